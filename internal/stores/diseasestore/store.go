// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package diseasestore is the content-addressed FASTA directory backing
// the disease catalog: one file per disease, named after the SHA-256
// digest of its canonical content.
package diseasestore

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/donpedromz/bioguard/internal/domain"
	"github.com/donpedromz/bioguard/internal/errs"
	"github.com/donpedromz/bioguard/internal/fasta"
	"github.com/donpedromz/bioguard/internal/integrity"
)

const extension = ".fasta"

// Store is the directory of hash-named disease FASTA files.
type Store struct {
	dir string
	mu  sync.Mutex
	log *slog.Logger
}

// New returns a Store rooted at dir, creating dir if it does not exist.
func New(dir string, log *slog.Logger) (*Store, error) {
	if dir == "" {
		return nil, errs.Persistencef("disease store: empty directory")
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errs.Wrap(errs.Persistence, "disease store: mkdir", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Save validates disease, rejects a disease whose canonical content
// already exists under a different (or the same) filename with Conflict,
// and writes the file with exclusive-create semantics. If disease.ID is
// empty a new UUID is assigned.
func (s *Store) Save(disease domain.Disease) (domain.Disease, error) {
	disease = disease.Normalize()
	if err := domain.Validate(disease); err != nil {
		return domain.Disease{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	canonicalHash := integrity.Hash(disease.Canonical())
	if s.existsByCanonicalHash(canonicalHash) {
		return domain.Disease{}, errs.Conflictf("disease %q already registered", disease.Name)
	}

	if disease.ID == "" {
		disease.ID = uuid.NewString()
	}

	path := filepath.Join(s.dir, canonicalHash+extension)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return domain.Disease{}, errs.Conflictf("disease %q already registered", disease.Name)
		}
		return domain.Disease{}, errs.Wrap(errs.Persistence, "disease store: create file", err)
	}
	defer f.Close()

	if _, err := f.WriteString(disease.Serialized()); err != nil {
		return domain.Disease{}, errs.Wrap(errs.Persistence, "disease store: write file", err)
	}
	return disease, nil
}

func (s *Store) existsByCanonicalHash(hash string) bool {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), extension) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		d, err := readVerifiedDisease(path, e.Name())
		if err != nil {
			continue
		}
		if integrity.Hash(d.Canonical()) == hash {
			return true
		}
	}
	return false
}

// FindAll enumerates every *.fasta file in the store, verifying integrity
// and parsing each one. Files that fail either step are logged and
// skipped rather than aborting the scan. The result is ordered by
// filename (i.e. by content hash), which is stable under any permutation
// of on-disk files that all pass integrity.
func (s *Store) FindAll() ([]domain.Disease, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errs.Wrap(errs.Persistence, "disease store: read dir", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), extension) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	diseases := make([]domain.Disease, 0, len(names))
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		d, err := readVerifiedDisease(path, name)
		if err != nil {
			s.log.Warn("disease store: skipping corrupt or unparseable file", "file", name, "error", err)
			continue
		}
		diseases = append(diseases, d)
	}
	return diseases, nil
}

// readVerifiedDisease reads the file at path (whose base name is name),
// parses its serialized form, and verifies integrity against the
// *canonical* hash rather than the raw file content: a disease file's
// content on disk includes the assigned id (Serialized), while its
// filename is Hash(Canonical()), which deliberately excludes the id (see
// domain.Disease.Canonical). Comparing the raw content's hash to the
// filename, as integrity.VerifyFile does, would therefore always fail
// for a disease file; the id must be parsed out first.
func readVerifiedDisease(path, name string) (domain.Disease, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Disease{}, errs.Wrap(errs.CorruptedData, "read "+name, err)
	}
	if len(data) == 0 {
		return domain.Disease{}, errs.CorruptedDataf("file %s is empty", name)
	}
	d, err := parseSerialized(string(data))
	if err != nil {
		return domain.Disease{}, err
	}
	wantHash := strings.TrimSuffix(name, extension)
	if got := integrity.Hash(d.Canonical()); got != wantHash {
		return domain.Disease{}, errs.CorruptedDataf("hash mismatch for %s: computed %s", name, got)
	}
	return d, nil
}

// parseSerialized parses a stored disease file's content
// (">id|name|infectiousness\nSEQUENCE") into a domain.Disease.
func parseSerialized(content string) (domain.Disease, error) {
	lines := fasta.Lines(content)
	if len(lines) != 2 {
		return domain.Disease{}, errs.InvalidFormatf("disease file must have exactly 2 lines, found %d", len(lines))
	}
	fields, err := fasta.ParseHeader(lines[0], 3)
	if err != nil {
		return domain.Disease{}, err
	}
	return domain.Disease{
		ID:              fields[0],
		Name:            fields[1],
		Infectiousness:  domain.Infectiousness(fields[2]),
		GeneticSequence: strings.ToUpper(lines[1]),
	}, nil
}
