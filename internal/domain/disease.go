// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package domain

import (
	"fmt"
	"strings"
)

// Infectiousness is the disease severity tier.
type Infectiousness string

const (
	InfectiousnessAlta  Infectiousness = "ALTA"
	InfectiousnessMedia Infectiousness = "MEDIA"
	InfectiousnessBaja  Infectiousness = "BAJA"
)

// Disease is a catalog entry. ID is assigned once, at first persistence,
// and is deliberately excluded from the content-addressing hash so that
// assigning it does not change the file's canonical name (see Canonical).
type Disease struct {
	ID              string         `validate:"omitempty,uuid4"`
	Name            string         `validate:"required,personname"`
	Infectiousness  Infectiousness `validate:"required,oneof=ALTA MEDIA BAJA"`
	GeneticSequence string         `validate:"required,min=15,fastaseq"`
}

// Normalize returns a copy of d with its name trimmed/collapsed and its
// sequence upper-cased.
func (d Disease) Normalize() Disease {
	d.Name = collapseSpaces(d.Name)
	d.GeneticSequence = strings.ToUpper(strings.TrimSpace(d.GeneticSequence))
	return d
}

// Canonical returns the content used as input to the content hash:
// ">name|infectiousness\nSEQUENCE". It deliberately omits ID: identifier
// assignment must never change a disease's content-addressed filename.
func (d Disease) Canonical() string {
	return fmt.Sprintf(">%s|%s\n%s", d.Name, d.Infectiousness, d.GeneticSequence)
}

// Serialized returns the content written to disk, which additionally
// carries the opaque ID: ">id|name|infectiousness\nSEQUENCE".
func (d Disease) Serialized() string {
	return fmt.Sprintf(">%s|%s|%s\n%s", d.ID, d.Name, d.Infectiousness, d.GeneticSequence)
}

// Contains reports whether d's sequence contains needle as a contiguous,
// case-sensitive substring (both sides are assumed already upper-cased),
// and returns the starting index of the match.
func (d Disease) Contains(needle string) (index int, ok bool) {
	idx := strings.Index(d.GeneticSequence, needle)
	if idx < 0 {
		return 0, false
	}
	return idx, true
}
