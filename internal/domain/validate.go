// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package domain holds the BioGuard entity types (Patient, Disease,
// Diagnostic) and the field-level validation rules attached to them.
//
// Field rules are expressed as go-playground/validator struct tags rather
// than hand-rolled if-chains: a single package-level *validator.Validate is
// configured once in init() with three custom validators this domain needs
// that the tag vocabulary doesn't cover natively: "fastaseq" (alphabet
// restricted to A, C, G, T), "isodate" (strict YYYY-MM-DD calendar
// date, not just format-shaped) and "personname" (letters, including
// accented ones, separated by single spaces).
package domain

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var fastaSeqPattern = regexp.MustCompile(`^[ACGT]+$`)

// namePattern matches one or more runs of letters (including the accented
// Latin letters used by Spanish-language names and places), separated by
// single spaces, with no leading/trailing space.
var namePattern = regexp.MustCompile(`^\p{L}+( \p{L}+)*$`)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("fastaseq", validateFastaSequence)
	_ = validate.RegisterValidation("isodate", validateISODate)
	_ = validate.RegisterValidation("personname", validatePersonName)
}

func validateFastaSequence(fl validator.FieldLevel) bool {
	return fastaSeqPattern.MatchString(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validatePersonName(fl validator.FieldLevel) bool {
	return namePattern.MatchString(fl.Field().String())
}

// Validate runs struct-tag validation over v and translates any failure
// into a *errs.Error of kind Validation listing the offending field
// names: see errs.Validationf and the ValidationErrors adaptor in
// errors.go.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return toValidationError(err)
	}
	return nil
}
