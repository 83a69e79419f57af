// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package parsers turns the three FASTA request-body dialects into typed
// domain objects. Parsers only enforce shape (line count, field count,
// numeric/date parseability): range and regex rules belong to
// domain.Validate, called by the service layer.
package parsers

import (
	"strconv"
	"strings"

	"github.com/donpedromz/bioguard/internal/domain"
	"github.com/donpedromz/bioguard/internal/errs"
	"github.com/donpedromz/bioguard/internal/fasta"
)

// ContentTypeFasta is the only content-type BioGuard's body parsers accept.
const ContentTypeFasta = "application/fasta"

// ParsePatient parses a single-line patient FASTA header:
// ">document|firstName|lastName|age|email|gender|city|country".
func ParsePatient(body string) (domain.Patient, error) {
	lines := fasta.Lines(body)
	if len(lines) != 1 {
		return domain.Patient{}, errs.InvalidFormatf("patient message must have exactly 1 line, found %d", len(lines))
	}
	fields, err := fasta.ParseHeader(lines[0], 8)
	if err != nil {
		return domain.Patient{}, err
	}
	age, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return domain.Patient{}, errs.InvalidFormatf("age must be numeric, got %q", fields[3])
	}
	return domain.Patient{
		Document:  fields[0],
		FirstName: fields[1],
		LastName:  fields[2],
		Age:       age,
		Email:     fields[4],
		Gender:    domain.NormalizeGender(fields[5]),
		City:      fields[6],
		Country:   fields[7],
	}, nil
}

// ParseDisease parses a two-line disease FASTA message:
// ">name|level\nSEQUENCE".
func ParseDisease(body string) (domain.Disease, error) {
	lines := fasta.Lines(body)
	if len(lines) != 2 {
		return domain.Disease{}, errs.InvalidFormatf("disease message must have exactly 2 lines, found %d", len(lines))
	}
	fields, err := fasta.ParseHeader(lines[0], 2)
	if err != nil {
		return domain.Disease{}, err
	}
	return domain.Disease{
		Name:            fields[0],
		Infectiousness:  domain.Infectiousness(strings.ToUpper(fields[1])),
		GeneticSequence: strings.ToUpper(lines[1]),
	}, nil
}

// ParseDiagnose parses a two-line diagnose FASTA message:
// ">document|YYYY-MM-DD\nSEQUENCE".
func ParseDiagnose(body string) (domain.DiagnoseRequest, error) {
	lines := fasta.Lines(body)
	if len(lines) != 2 {
		return domain.DiagnoseRequest{}, errs.InvalidFormatf("diagnose message must have exactly 2 lines, found %d", len(lines))
	}
	fields, err := fasta.ParseHeader(lines[0], 2)
	if err != nil {
		return domain.DiagnoseRequest{}, err
	}
	return domain.DiagnoseRequest{
		Document:       fields[0],
		SampleDate:     fields[1],
		SampleSequence: strings.ToUpper(lines[1]),
	}, nil
}
