// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package patientstore is the CSV-backed patient table: one row per
// patient, unique by document, guarded by a single process-wide mutex
// over the file.
package patientstore

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/donpedromz/bioguard/internal/domain"
	"github.com/donpedromz/bioguard/internal/errs"
)

// Header is the single required header row for the patient CSV file.
const Header = "patientUuid,patientDocument,firstName,lastName,age,email,gender,city,country"

const columnCount = 9

// Store is the CSV-backed patient table. A Store's zero value is not
// usable; construct one with New.
type Store struct {
	path string
	mu   sync.Mutex
	log  *slog.Logger
}

// New opens (creating if necessary) the patient CSV at path, ensuring its
// first line is exactly Header.
func New(path string, log *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errs.Persistencef("patient store: empty path")
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Store{path: path, log: log}
	if err := s.ensureHeader(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureHeader() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return errs.Wrap(errs.Persistence, "patient store: read", err)
		}
		return os.WriteFile(s.path, []byte(Header+"\n"), 0o644)
	}
	if len(data) == 0 {
		return os.WriteFile(s.path, []byte(Header+"\n"), 0o644)
	}
	lines := strings.SplitN(string(data), "\n", 2)
	if strings.TrimRight(lines[0], "\r") == Header {
		return nil
	}
	rest := ""
	if len(lines) == 2 {
		rest = lines[1]
	}
	return os.WriteFile(s.path, []byte(Header+"\n"+rest), 0o644)
}

// controlCharPattern matches the characters the wire-protocol spec names
// as CSV metacharacters: control characters plus the comma and double
// quote: rather than relying on RFC-4180 quoting for them. This mirrors
// the original service's over-eager sanitizer: commas and quotes never
// reach the writer, so the library's own quoting logic is defensive but
// effectively dormant for sanitized fields.
var controlCharPattern = regexp.MustCompile(`[\x00-\x1F\x7F,"]`)

func sanitize(field string) string {
	stripped := controlCharPattern.ReplaceAllString(field, "")
	return strings.Join(strings.Fields(stripped), " ")
}

// Save validates patient, rejects a duplicate document with Conflict, and
// appends one sanitized CSV row. If patient.ID is empty a new UUID is
// assigned.
func (s *Store) Save(patient domain.Patient) (domain.Patient, error) {
	patient = patient.Normalize()
	if err := domain.Validate(patient); err != nil {
		return domain.Patient{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookupByDocument(patient.Document); err == nil {
		return domain.Patient{}, errs.Conflictf("patient with document %s already exists", patient.Document)
	}

	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}

	row := []string{
		sanitize(patient.ID), sanitize(patient.Document), sanitize(patient.FirstName),
		sanitize(patient.LastName), strconv.Itoa(patient.Age), sanitize(patient.Email),
		sanitize(string(patient.Gender)), sanitize(patient.City), sanitize(patient.Country),
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return domain.Patient{}, errs.Wrap(errs.Persistence, "patient store: open for append", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return domain.Patient{}, errs.Wrap(errs.Persistence, "patient store: write row", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return domain.Patient{}, errs.Wrap(errs.Persistence, "patient store: flush", err)
	}
	return patient, nil
}

// GetByDocument linearly scans the CSV for a row whose document column
// equals document. Rows that fail to parse are logged and skipped rather
// than aborting the scan.
func (s *Store) GetByDocument(document string) (domain.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupByDocument(document)
}

func (s *Store) lookupByDocument(document string) (domain.Patient, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return domain.Patient{}, errs.Wrap(errs.Persistence, "patient store: open for read", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	first := true
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if first {
			first = false
			continue // header
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := parseCSVLine(line)
		if err != nil {
			s.log.Warn("patient store: skipping corrupt row", "line", lineNo, "error", err)
			continue
		}
		if len(rec) != columnCount {
			s.log.Warn("patient store: skipping row with wrong column count", "line", lineNo, "columns", len(rec))
			continue
		}
		if _, err := uuid.Parse(rec[0]); err != nil {
			s.log.Warn("patient store: skipping row with unparseable uuid", "line", lineNo)
			continue
		}
		age, err := strconv.Atoi(rec[4])
		if err != nil {
			s.log.Warn("patient store: skipping row with unparseable age", "line", lineNo)
			continue
		}
		if rec[1] != document {
			continue
		}
		return domain.Patient{
			ID: rec[0], Document: rec[1], FirstName: rec[2], LastName: rec[3],
			Age: age, Email: rec[5], Gender: domain.Gender(rec[6]), City: rec[7], Country: rec[8],
		}, nil
	}
	if err := scanner.Err(); err != nil {
		return domain.Patient{}, errs.Wrap(errs.Persistence, "patient store: scan", err)
	}
	return domain.Patient{}, errs.NotFoundf("patient with document %s not found", document)
}

func parseCSVLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	rec, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("parse csv line: %w", err)
	}
	return rec, nil
}
