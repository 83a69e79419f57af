// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package fasta provides the low-level line-splitting and header-parsing
// primitives shared by every body parser and every FASTA-backed store.
// It knows nothing about patients, diseases, or diagnoses: only about the
// ">field|field\nSEQUENCE" shape.
package fasta

import (
	"strings"

	"github.com/donpedromz/bioguard/internal/errs"
)

// Lines splits text on any line terminator, trims each line, and drops
// blank lines.
func Lines(text string) []string {
	normalized := strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")
	raw := strings.Split(normalized, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// ParseHeader requires firstLine to start with '>', splits the remainder
// on '|', and requires exactly shape fields. Each returned field is
// trimmed.
func ParseHeader(firstLine string, shape int) ([]string, error) {
	if !strings.HasPrefix(firstLine, ">") {
		return nil, errs.InvalidFormatf("header must start with '>'")
	}
	rest := strings.TrimPrefix(firstLine, ">")
	fields := strings.Split(rest, "|")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	if len(fields) != shape {
		return nil, errs.InvalidFormatf("header must have %d fields, found %d", shape, len(fields))
	}
	return fields, nil
}

// SequenceOf returns the second line of fastaText upper-cased, or the
// empty string when the text has fewer than two lines.
func SequenceOf(fastaText string) string {
	lines := Lines(fastaText)
	if len(lines) < 2 {
		return ""
	}
	return strings.ToUpper(lines[1])
}
