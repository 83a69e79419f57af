// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package controllers maps parsed requests onto domain services and
// formats their outcomes into wire-protocol status lines.
package controllers

import (
	"github.com/donpedromz/bioguard/internal/domain"
	"github.com/donpedromz/bioguard/internal/errs"
	"github.com/donpedromz/bioguard/internal/parsers"
	"github.com/donpedromz/bioguard/internal/response"
	"github.com/donpedromz/bioguard/internal/router"
)

// PatientRegistrar registers a parsed patient.
type PatientRegistrar interface {
	Register(patient domain.Patient) (domain.Patient, error)
}

// Patient builds the POST:patient controller. A duplicate document
// surfaces from the store as a Conflict, but the patient controller maps
// it to the same 400 ValidationError category as every other field rule:
// a duplicate document is treated as a validation failure of the
// submitted form, not a resource conflict.
func Patient(svc PatientRegistrar) router.Controller {
	return func(req router.Request) string {
		if req.ContentType != parsers.ContentTypeFasta {
			return response.Error(errs.InvalidFormatf("unsupported content-type %q", req.ContentType))
		}

		patient, err := parsers.ParsePatient(req.Body)
		if err != nil {
			return response.Error(err)
		}

		saved, err := svc.Register(patient)
		if err != nil {
			if errs.KindOf(err) == errs.Conflict {
				return response.Error(errs.Validationf([]string{"document"}, "%s", err.Error()))
			}
			return response.Error(err)
		}

		return response.Success(201, "Created", "paciente registrado exitosamente: "+saved.ID)
	}
}
