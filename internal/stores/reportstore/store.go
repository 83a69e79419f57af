// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package reportstore is the append-only, consolidated high-infectivity
// report CSV. A row is appended only when a single diagnosis detects at
// least three ALTA-level diseases.
package reportstore

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/donpedromz/bioguard/internal/errs"
)

// Header preserves the external contract's spelling verbatim, typos
// included ("cantiad", "altmanete"): it is read by external tooling and
// must not be silently corrected.
const Header = "documento,total_virus_detectados,cantiad_virus_altamente_infecciosos,lista_virus_contagio_normal_o_medio,lista_virus_altmanete_infecciosos"

// Store is the single consolidated high-infectivity report CSV.
type Store struct {
	path string
	mu   sync.Mutex
}

// New opens (creating if necessary) the report CSV at path, ensuring its
// first line is exactly Header.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errs.Persistencef("report store: empty path")
	}
	s := &Store{path: path}
	if err := s.ensureHeader(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureHeader() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return errs.Wrap(errs.Persistence, "report store: read", err)
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

// Append writes one row for document, with the detected-virus counts and
// pipe-joined name lists. Callers are responsible for applying the
// ALTA-count >= 3 threshold before calling this: the store itself does
// not re-check it.
func (s *Store) Append(document string, totalDetected, altaCount int, nonAltaNames, altaNames []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errs.Wrap(errs.Persistence, "report store: open for append", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	row := []string{
		document,
		strconv.Itoa(totalDetected),
		strconv.Itoa(altaCount),
		strings.Join(nonAltaNames, "|"),
		strings.Join(altaNames, "|"),
	}
	if err := w.Write(row); err != nil {
		return errs.Wrap(errs.Persistence, "report store: write row", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errs.Wrap(errs.Persistence, "report store: flush", err)
	}
	return nil
}
