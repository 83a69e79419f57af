// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package patientsvc implements patient registration: field validation
// and identifier assignment happen at the store boundary, so the
// service itself is a thin delegation layer.
package patientsvc

import "github.com/donpedromz/bioguard/internal/domain"

// Store is the persistence boundary this service delegates to.
type Store interface {
	Save(domain.Patient) (domain.Patient, error)
}

// Service registers patients.
type Service struct {
	store Store
}

// New returns a Service backed by store.
func New(store Store) *Service {
	return &Service{store: store}
}

// Register validates and persists patient, returning the normalized,
// identifier-assigned record.
func (s *Service) Register(patient domain.Patient) (domain.Patient, error) {
	return s.store.Save(patient)
}
