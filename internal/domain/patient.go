// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package domain

import "strings"

// Gender is the internal, underscore-joined representation of a patient's
// reported gender. The wire protocol's external form uses spaces
// ("NO ESPECIFICADO"); NormalizeGender performs the translation.
type Gender string

const (
	GenderMasculino      Gender = "MASCULINO"
	GenderFemenino       Gender = "FEMENINO"
	GenderOtro           Gender = "OTRO"
	GenderNoEspecificado Gender = "NO_ESPECIFICADO"
)

// NormalizeGender maps the external wire form of a gender value (which may
// contain spaces instead of underscores, e.g. "NO ESPECIFICADO") to the
// internal Gender constant. Unknown values are returned unchanged so that
// Validate can reject them by enum membership.
func NormalizeGender(external string) Gender {
	return Gender(strings.ReplaceAll(strings.TrimSpace(external), " ", "_"))
}

// Patient is the registered-patient entity. ID is assigned once, at first
// persistence, and never recomputed.
type Patient struct {
	ID        string `validate:"omitempty,uuid4"`
	Document  string `validate:"required,max=20,number"`
	FirstName string `validate:"required,personname"`
	LastName  string `validate:"required,personname"`
	Age       int    `validate:"required,min=1,max=120"`
	Email     string `validate:"required,email"`
	Gender    Gender `validate:"required,oneof=MASCULINO FEMENINO OTRO NO_ESPECIFICADO"`
	City      string `validate:"required,personname"`
	Country   string `validate:"required,personname"`
}

// Normalize returns a copy of p with every free-text field trimmed and
// collapsed to single-space separation, matching the "normalized (trimmed,
// single-spaced) form" invariant persisted fields must satisfy.
func (p Patient) Normalize() Patient {
	p.Document = strings.TrimSpace(p.Document)
	p.FirstName = collapseSpaces(p.FirstName)
	p.LastName = collapseSpaces(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	p.City = collapseSpaces(p.City)
	p.Country = collapseSpaces(p.Country)
	return p
}

func collapseSpaces(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	return strings.Join(fields, " ")
}
