// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package historystore writes the per-diagnosis mutation-history CSV,
// one row per prior sample compared against the current one via the
// change-segment algorithm in Segments.
package historystore

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/donpedromz/bioguard/internal/errs"
)

const (
	historyDir = "history"
	header     = "fecha_muestra,posicion_inicio_cambio,posicion_inicio_fin_cambio,tipo_cambio"
)

// ChangeKind names the category of edit detected between two samples.
type ChangeKind string

const (
	ReduccionIzquierda ChangeKind = "reduccion_izquierda"
	ReduccionDerecha   ChangeKind = "reduccion_derecha"
	AgregadoIzquierda  ChangeKind = "agregado_izquierda"
	AgregadoDerecha    ChangeKind = "agregado_derecha"
	SinCambios         ChangeKind = "sin_cambios"
	SinCoincidencia    ChangeKind = "sin_coincidencia"
)

// Segment is one row of the mutation-history CSV: an inclusive
// [Start, End] index range and the kind of change it represents.
type Segment struct {
	Start int
	End   int
	Kind  ChangeKind
}

// Segments computes the change-segment list between the current sample
// sequence and one previous sequence, per the prefix/suffix-edit
// algorithm: it detects containment in either direction but never
// substitutions or interior indels: callers must not generalize this.
func Segments(current, previous string) []Segment {
	if current == "" || previous == "" {
		return []Segment{{Start: -1, End: -1, Kind: SinCoincidencia}}
	}
	if s := strings.Index(previous, current); s >= 0 {
		return trimSegments(s, len(current), len(previous), ReduccionIzquierda, ReduccionDerecha)
	}
	if s := strings.Index(current, previous); s >= 0 {
		return trimSegments(s, len(previous), len(current), AgregadoIzquierda, AgregadoDerecha)
	}
	return []Segment{{Start: -1, End: -1, Kind: SinCoincidencia}}
}

// trimSegments builds the left/right segment pair around a containment
// match at index s of a needle of length needleLen inside a haystack of
// length haystackLen, emitting each side only when nonempty and
// collapsing to a single SinCambios row when both sides are empty.
func trimSegments(s, needleLen, haystackLen int, leftKind, rightKind ChangeKind) []Segment {
	var segs []Segment
	if s > 0 {
		segs = append(segs, Segment{Start: 0, End: s - 1, Kind: leftKind})
	}
	rightStart := s + needleLen
	if rightStart <= haystackLen-1 {
		segs = append(segs, Segment{Start: rightStart, End: haystackLen - 1, Kind: rightKind})
	}
	if len(segs) == 0 {
		return []Segment{{Start: 0, End: haystackLen - 1, Kind: SinCambios}}
	}
	return segs
}

// Row is one fully-dated mutation-history record, combining a prior
// sample's date with the segments computed against it.
type Row struct {
	PreviousSampleDate string
	Segments           []Segment
}

// Store writes the per-diagnosis history CSV under <root>/<patientID>/history.
type Store struct {
	root string
	mu   sync.Mutex
}

// New returns a Store rooted at root.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, errs.Persistencef("history store: empty root")
	}
	return &Store{root: root}, nil
}

// Save writes one row per (prior sample date, segment) pair, in the order
// rows are given: callers are expected to have already sorted rows by
// PreviousSampleDate ascending (invalid dates last).
func (s *Store) Save(patientID, diagnosticID, date string, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, patientID, historyDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errs.Wrap(errs.Persistence, "history store: mkdir", err)
	}
	path := filepath.Join(dir, date+"_"+diagnosticID+".csv")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errs.Wrap(errs.Persistence, "history store: create file", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(strings.Split(header, ",")); err != nil {
		return errs.Wrap(errs.Persistence, "history store: write header", err)
	}
	for _, row := range rows {
		for _, seg := range row.Segments {
			record := []string{
				row.PreviousSampleDate,
				strconv.Itoa(seg.Start),
				strconv.Itoa(seg.End),
				string(seg.Kind),
			}
			if err := w.Write(record); err != nil {
				return errs.Wrap(errs.Persistence, "history store: write row", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errs.Wrap(errs.Persistence, "history store: flush", err)
	}
	return nil
}
