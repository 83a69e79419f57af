// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package diagnosesvc implements the diagnosis pipeline: patient lookup,
// duplicate-sample gate, exact sequence containment against the disease
// catalog, and the three cascading persistence effects.
package diagnosesvc

import (
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/donpedromz/bioguard/internal/domain"
	"github.com/donpedromz/bioguard/internal/errs"
	"github.com/donpedromz/bioguard/internal/stores/diagnosisstore"
	"github.com/donpedromz/bioguard/internal/stores/historystore"
)

// altaThreshold is the minimum count of ALTA-level matches that triggers
// a high-infectivity report row.
const altaThreshold = 3

// PatientStore is the patient-lookup boundary.
type PatientStore interface {
	GetByDocument(document string) (domain.Patient, error)
}

// DiseaseStore is the disease-catalog boundary.
type DiseaseStore interface {
	FindAll() ([]domain.Disease, error)
}

// DiagnosisStore is the sample/generated-diagnostics persistence boundary.
type DiagnosisStore interface {
	ExistsByPatientAndSample(patientID, document, date, sequence string) bool
	Save(diagnostic domain.Diagnostic, matches []diagnosisstore.Match) error
	PriorSamples(patientID, excludeHash string) ([]diagnosisstore.PriorSample, error)
}

// ReportStore is the high-infectivity-report persistence boundary.
type ReportStore interface {
	Append(document string, totalDetected, altaCount int, nonAltaNames, altaNames []string) error
}

// HistoryStore is the mutation-history persistence boundary.
type HistoryStore interface {
	Save(patientID, diagnosticID, date string, rows []historystore.Row) error
}

// Service runs the diagnosis pipeline.
type Service struct {
	patients  PatientStore
	diseases  DiseaseStore
	diagnoses DiagnosisStore
	reports   ReportStore
	history   HistoryStore
	log       *slog.Logger
}

// New returns a Service wired to its five store dependencies.
func New(patients PatientStore, diseases DiseaseStore, diagnoses DiagnosisStore, reports ReportStore, history HistoryStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{patients: patients, diseases: diseases, diagnoses: diagnoses, reports: reports, history: history, log: log}
}

// Result is what the controller needs to build a response: the
// materialized diagnostic and the ordered list of secondary-effect
// operation messages.
type Result struct {
	Diagnostic        domain.Diagnostic
	OperationMessages []string
}

// Diagnose runs the full seven-step diagnosis pipeline.
func (s *Service) Diagnose(req domain.DiagnoseRequest) (Result, error) {
	// Step 1: field-level validation.
	if err := domain.Validate(req); err != nil {
		return Result{}, err
	}

	// Step 2: patient lookup.
	patient, err := s.patients.GetByDocument(req.Document)
	if err != nil {
		return Result{}, err
	}
	if patient.ID == "" {
		return Result{}, errs.NotFoundf("patient %s has no identifier", req.Document)
	}

	// Step 3: duplicate-sample gate.
	if s.diagnoses.ExistsByPatientAndSample(patient.ID, req.Document, req.SampleDate, req.SampleSequence) {
		return Result{}, errs.Conflictf("sample already diagnosed for patient %s on %s", req.Document, req.SampleDate)
	}

	// Step 4: disease scan.
	catalog, err := s.diseases.FindAll()
	if err != nil {
		return Result{}, err
	}
	var matches []domain.Disease
	var positions []int
	for _, d := range catalog {
		normalized := d.Normalize()
		idx, ok := normalized.Contains(req.SampleSequence)
		if !ok {
			continue
		}
		matches = append(matches, normalized)
		positions = append(positions, idx)
	}

	// Step 5: no-match guard.
	if len(matches) == 0 {
		return Result{}, errs.NotFoundf("no matching disease for sample")
	}

	// Step 6: diagnostic construction.
	diagnostic := domain.Diagnostic{
		ID:             uuid.NewString(),
		SampleDate:     req.SampleDate,
		SampleSequence: req.SampleSequence,
		Patient:        patient,
		Matches:        matches,
	}

	// Step 7a: diagnosis store save.
	storeMatches := make([]diagnosisstore.Match, len(matches))
	for i, m := range matches {
		storeMatches[i] = diagnosisstore.Match{
			Disease:    m,
			StartIndex: positions[i],
			EndIndex:   positions[i] + len(req.SampleSequence) - 1,
		}
	}
	if err := s.diagnoses.Save(diagnostic, storeMatches); err != nil {
		return Result{}, err
	}

	messages := []string{"enfermedades_detectadas: " + strconv.Itoa(len(matches))}

	// Step 7b: high-infectivity report.
	msg, err := s.reportHighInfectivity(req.Document, matches)
	if err != nil {
		return Result{}, err
	}
	if msg != "" {
		messages = append(messages, msg)
	}

	// Step 7c: mutation history.
	currentHash := diagnosisstore.SampleHash(req.Document, req.SampleDate, req.SampleSequence)
	msg, err = s.updateMutationHistory(patient.ID, diagnostic.ID, req.SampleDate, req.SampleSequence, currentHash)
	if err != nil {
		return Result{}, err
	}
	if msg != "" {
		messages = append(messages, msg)
	}

	return Result{Diagnostic: diagnostic, OperationMessages: messages}, nil
}

func (s *Service) reportHighInfectivity(document string, matches []domain.Disease) (string, error) {
	var altaNames, nonAltaNames []string
	for _, m := range matches {
		if m.Infectiousness == domain.InfectiousnessAlta {
			altaNames = append(altaNames, m.Name)
		} else {
			nonAltaNames = append(nonAltaNames, m.Name)
		}
	}
	if len(altaNames) < altaThreshold {
		return "", nil
	}
	if err := s.reports.Append(document, len(matches), len(altaNames), nonAltaNames, altaNames); err != nil {
		return "", errs.Wrap(errs.Persistence, "diagnose: append high-infectivity report", err)
	}
	return "criterio_alta_infecciosidad: cumple (>= 3)", nil
}

func (s *Service) updateMutationHistory(patientID, diagnosticID, date, currentSequence, currentHash string) (string, error) {
	prior, err := s.diagnoses.PriorSamples(patientID, currentHash)
	if err != nil {
		return "", errs.Wrap(errs.Persistence, "diagnose: list prior samples", err)
	}
	if len(prior) == 0 {
		return "", nil
	}
	rows := make([]historystore.Row, 0, len(prior))
	for _, p := range prior {
		rows = append(rows, historystore.Row{
			PreviousSampleDate: p.Date,
			Segments:           historystore.Segments(currentSequence, p.Sequence),
		})
	}
	if err := s.history.Save(patientID, diagnosticID, date, rows); err != nil {
		return "", errs.Wrap(errs.Persistence, "diagnose: save mutation history", err)
	}
	return "historial_muestras: actualizado", nil
}
