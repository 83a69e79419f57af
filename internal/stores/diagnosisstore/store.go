// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package diagnosisstore is the per-patient tree of content-addressed
// sample files and generated-diagnostic CSVs.
package diagnosisstore

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/donpedromz/bioguard/internal/domain"
	"github.com/donpedromz/bioguard/internal/errs"
	"github.com/donpedromz/bioguard/internal/integrity"
)

const (
	sampleExtension = ".fasta"
	samplesDir      = "samples"
	generatedDir    = "generated_diagnostics"
	generatedHeader = "uuid_diagnostico,fecha,uuid_virus,virus,posicion_inicio,posicion_fin"
)

// Match is one detected disease in a diagnosis, carrying the positional
// information the generated CSV records.
type Match struct {
	Disease    domain.Disease
	StartIndex int
	EndIndex   int
}

// Store is the per-patient sample/generated-diagnostics tree.
type Store struct {
	root string
	mu   sync.Mutex
	log  *slog.Logger
}

// New returns a Store rooted at root, creating it if necessary.
func New(root string, log *slog.Logger) (*Store, error) {
	if root == "" {
		return nil, errs.Persistencef("diagnosis store: empty root")
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, errs.Wrap(errs.Persistence, "diagnosis store: mkdir", err)
	}
	return &Store{root: root, log: log}, nil
}

func (s *Store) samplesDirFor(patientID string) string {
	return filepath.Join(s.root, patientID, samplesDir)
}

func (s *Store) generatedDirFor(patientID string) string {
	return filepath.Join(s.root, patientID, generatedDir)
}

// SampleHash returns the content hash used to name a patient's sample
// file: sha256(">document|date\nSEQUENCE").
func SampleHash(document, date, sequence string) string {
	return integrity.Hash(domain.SampleCanonical(document, date, sequence))
}

// ExistsByPatientAndSample reports whether the canonical sample tuple
// already has a file on disk, verifying its integrity before returning
// true so a corrupted file never masquerades as an existing sample.
func (s *Store) ExistsByPatientAndSample(patientID, document, date, sequence string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := SampleHash(document, date, sequence)
	path := filepath.Join(s.samplesDirFor(patientID), hash+sampleExtension)
	return integrity.VerifyFile(path, sampleExtension) == nil
}

// Save creates the per-patient directory tree, writes the sample file
// with exclusive-create semantics (Conflict if it already exists), and
// writes the per-diagnostic generated CSV. Both writes happen under the
// store's lock so the three cascading effects described by the service
// layer observe a consistent directory view.
func (s *Store) Save(diagnostic domain.Diagnostic, matches []Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	samplesPath := s.samplesDirFor(diagnostic.Patient.ID)
	if err := os.MkdirAll(samplesPath, 0o750); err != nil {
		return errs.Wrap(errs.Persistence, "diagnosis store: mkdir samples", err)
	}
	hash := SampleHash(diagnostic.Patient.Document, diagnostic.SampleDate, diagnostic.SampleSequence)
	samplePath := filepath.Join(samplesPath, hash+sampleExtension)

	content := domain.SampleCanonical(diagnostic.Patient.Document, diagnostic.SampleDate, diagnostic.SampleSequence)
	f, err := os.OpenFile(samplePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return errs.Conflictf("sample already exists for patient %s on %s", diagnostic.Patient.Document, diagnostic.SampleDate)
		}
		return errs.Wrap(errs.Persistence, "diagnosis store: create sample file", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return errs.Wrap(errs.Persistence, "diagnosis store: write sample file", err)
	}
	f.Close()

	generatedPath := s.generatedDirFor(diagnostic.Patient.ID)
	if err := os.MkdirAll(generatedPath, 0o750); err != nil {
		return errs.Wrap(errs.Persistence, "diagnosis store: mkdir generated", err)
	}
	csvPath := filepath.Join(generatedPath, diagnostic.SampleDate+"_"+diagnostic.ID+".csv")
	out, err := os.OpenFile(csvPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errs.Wrap(errs.Persistence, "diagnosis store: create generated csv", err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(strings.Split(generatedHeader, ",")); err != nil {
		return errs.Wrap(errs.Persistence, "diagnosis store: write generated header", err)
	}
	for _, m := range matches {
		row := []string{
			diagnostic.ID, diagnostic.SampleDate, m.Disease.ID, m.Disease.Name,
			strconv.Itoa(m.StartIndex), strconv.Itoa(m.EndIndex),
		}
		if err := w.Write(row); err != nil {
			return errs.Wrap(errs.Persistence, "diagnosis store: write generated row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errs.Wrap(errs.Persistence, "diagnosis store: flush generated csv", err)
	}
	return nil
}

// PriorSample is a previously written sample, excluding the one just
// created, as needed by the mutation-history computation.
type PriorSample struct {
	Date     string
	Sequence string
}

// PriorSamples returns every sample file for patientID other than the one
// named excludeHash, verifying each one's integrity and logging (but not
// failing on) corrupt files.
func (s *Store) PriorSamples(patientID, excludeHash string) ([]PriorSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.samplesDirFor(patientID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.Persistence, "diagnosis store: read samples dir", err)
	}

	var prior []PriorSample
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), sampleExtension) {
			continue
		}
		hash := strings.TrimSuffix(e.Name(), sampleExtension)
		if hash == excludeHash {
			continue
		}
		path := filepath.Join(dir, e.Name())
		content, err := integrity.ReadVerified(path, sampleExtension)
		if err != nil {
			s.log.Warn("diagnosis store: skipping corrupt sample", "file", e.Name(), "error", err)
			continue
		}
		date, sequence, err := parseSampleHeader(content)
		if err != nil {
			s.log.Warn("diagnosis store: skipping unparseable sample", "file", e.Name(), "error", err)
			continue
		}
		prior = append(prior, PriorSample{Date: date, Sequence: sequence})
	}
	sort.Slice(prior, func(i, j int) bool { return lessByDate(prior[i].Date, prior[j].Date) })
	return prior, nil
}

// lessByDate orders ISO calendar dates ascending, sorting any date that
// fails to parse as YYYY-MM-DD after every valid one.
func lessByDate(a, b string) bool {
	ta, aOK := parseISODate(a)
	tb, bOK := parseISODate(b)
	if aOK != bOK {
		return aOK
	}
	if !aOK {
		return a < b
	}
	return ta.Before(tb)
}

func parseISODate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

func parseSampleHeader(content string) (date, sequence string, err error) {
	lines := strings.SplitN(strings.TrimSpace(content), "\n", 2)
	if len(lines) != 2 {
		return "", "", errs.InvalidFormatf("sample file must have 2 lines")
	}
	header := strings.TrimPrefix(strings.TrimSpace(lines[0]), ">")
	parts := strings.SplitN(header, "|", 2)
	if len(parts) != 2 {
		return "", "", errs.InvalidFormatf("sample header must have 2 fields")
	}
	return parts[1], strings.ToUpper(strings.TrimSpace(lines[1])), nil
}
