package diagnosesvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donpedromz/bioguard/internal/domain"
	"github.com/donpedromz/bioguard/internal/stores/diagnosisstore"
	"github.com/donpedromz/bioguard/internal/stores/historystore"
)

type fakePatients struct {
	byDocument map[string]domain.Patient
}

func (f *fakePatients) GetByDocument(document string) (domain.Patient, error) {
	p, ok := f.byDocument[document]
	if !ok {
		return domain.Patient{}, notFound("patient")
	}
	return p, nil
}

type fakeDiseases struct {
	all []domain.Disease
}

func (f *fakeDiseases) FindAll() ([]domain.Disease, error) {
	return f.all, nil
}

type fakeDiagnoses struct {
	exists  bool
	saved   []diagnosisstore.Match
	samples []diagnosisstore.PriorSample
	hashes  []string
}

func (f *fakeDiagnoses) ExistsByPatientAndSample(patientID, document, date, sequence string) bool {
	return f.exists
}

func (f *fakeDiagnoses) Save(diagnostic domain.Diagnostic, matches []diagnosisstore.Match) error {
	f.saved = matches
	f.samples = append(f.samples, diagnosisstore.PriorSample{Date: diagnostic.SampleDate, Sequence: diagnostic.SampleSequence})
	f.hashes = append(f.hashes, diagnosisstore.SampleHash(diagnostic.Patient.Document, diagnostic.SampleDate, diagnostic.SampleSequence))
	return nil
}

func (f *fakeDiagnoses) PriorSamples(patientID, excludeHash string) ([]diagnosisstore.PriorSample, error) {
	var prior []diagnosisstore.PriorSample
	for i, s := range f.samples {
		if f.hashes[i] != excludeHash {
			prior = append(prior, s)
		}
	}
	return prior, nil
}

type fakeReports struct {
	called  bool
	alta    int
	total   int
}

func (f *fakeReports) Append(document string, totalDetected, altaCount int, nonAltaNames, altaNames []string) error {
	f.called = true
	f.total = totalDetected
	f.alta = altaCount
	return nil
}

type fakeHistory struct {
	called bool
	rows   []historystore.Row
}

func (f *fakeHistory) Save(patientID, diagnosticID, date string, rows []historystore.Row) error {
	f.called = true
	f.rows = rows
	return nil
}

type notFoundErr string

func (e notFoundErr) Error() string { return string(e) }

func notFound(what string) error { return notFoundErr(what + " not found") }

func newFixture(patient domain.Patient, diseases []domain.Disease) (*fakePatients, *fakeDiseases, *fakeDiagnoses, *fakeReports, *fakeHistory, *Service) {
	patients := &fakePatients{byDocument: map[string]domain.Patient{patient.Document: patient}}
	ds := &fakeDiseases{all: diseases}
	diag := &fakeDiagnoses{}
	reports := &fakeReports{}
	history := &fakeHistory{}
	svc := New(patients, ds, diag, reports, history, nil)
	return patients, ds, diag, reports, history, svc
}

func TestDiagnoseSingleMatch(t *testing.T) {
	patient := domain.Patient{ID: "p1", Document: "12345678"}
	disease := domain.Disease{ID: "d1", Name: "Gripe", Infectiousness: domain.InfectiousnessBaja, GeneticSequence: "AGAGTATGTGAACCTGATACG"}
	_, _, _, reports, history, svc := newFixture(patient, []domain.Disease{disease})

	result, err := svc.Diagnose(domain.DiagnoseRequest{
		Document:       patient.Document,
		SampleDate:     "2026-01-01",
		SampleSequence: "GAGTATGTGAA",
	})
	require.NoError(t, err)
	assert.Len(t, result.Diagnostic.Matches, 1)
	assert.Equal(t, "enfermedades_detectadas: 1", result.OperationMessages[0])
	assert.False(t, reports.called)
	assert.False(t, history.called)
}

func TestDiagnoseHighInfectivityTriggersReport(t *testing.T) {
	patient := domain.Patient{ID: "p1", Document: "12345678"}
	seq := "AGAGTATGTGAACCTGATACG"
	diseases := []domain.Disease{
		{ID: "d1", Name: "Virus1", Infectiousness: domain.InfectiousnessAlta, GeneticSequence: seq},
		{ID: "d2", Name: "Virus2", Infectiousness: domain.InfectiousnessAlta, GeneticSequence: seq},
		{ID: "d3", Name: "Virus3", Infectiousness: domain.InfectiousnessAlta, GeneticSequence: seq},
	}
	_, _, _, reports, _, svc := newFixture(patient, diseases)

	result, err := svc.Diagnose(domain.DiagnoseRequest{
		Document:       patient.Document,
		SampleDate:     "2026-01-01",
		SampleSequence: seq,
	})
	require.NoError(t, err)
	assert.True(t, reports.called)
	assert.Equal(t, 3, reports.alta)
	assert.Contains(t, result.OperationMessages, "criterio_alta_infecciosidad: cumple (>= 3)")
}

func TestDiagnoseNoMatchReturnsNotFound(t *testing.T) {
	patient := domain.Patient{ID: "p1", Document: "12345678"}
	disease := domain.Disease{ID: "d1", Name: "Gripe", Infectiousness: domain.InfectiousnessBaja, GeneticSequence: "AAAAAAAAAAAAAAAA"}
	_, _, _, _, _, svc := newFixture(patient, []domain.Disease{disease})

	_, err := svc.Diagnose(domain.DiagnoseRequest{
		Document:       patient.Document,
		SampleDate:     "2026-01-01",
		SampleSequence: "CCCCCCC",
	})
	require.Error(t, err)
}

func TestDiagnoseDuplicateSampleConflicts(t *testing.T) {
	patient := domain.Patient{ID: "p1", Document: "12345678"}
	disease := domain.Disease{ID: "d1", Name: "Gripe", Infectiousness: domain.InfectiousnessBaja, GeneticSequence: "AGAGTATGTGAA"}
	_, _, diag, _, _, svc := newFixture(patient, []domain.Disease{disease})
	diag.exists = true

	_, err := svc.Diagnose(domain.DiagnoseRequest{
		Document:       patient.Document,
		SampleDate:     "2026-01-01",
		SampleSequence: "AGAGTATGTGAA",
	})
	require.Error(t, err)
}

func TestDiagnoseSecondSampleUpdatesMutationHistory(t *testing.T) {
	patient := domain.Patient{ID: "p1", Document: "12345678"}
	disease := domain.Disease{ID: "d1", Name: "Gripe", Infectiousness: domain.InfectiousnessBaja, GeneticSequence: "AGAGTATGTGAACCTGATACG"}
	_, _, diag, _, history, svc := newFixture(patient, []domain.Disease{disease})

	_, err := svc.Diagnose(domain.DiagnoseRequest{
		Document:       patient.Document,
		SampleDate:     "2026-01-01",
		SampleSequence: "GAGTATGTGAA",
	})
	require.NoError(t, err)
	assert.False(t, history.called)

	diag.exists = false
	result, err := svc.Diagnose(domain.DiagnoseRequest{
		Document:       patient.Document,
		SampleDate:     "2026-01-02",
		SampleSequence: "AGAGTATGTGAA",
	})
	require.NoError(t, err)
	assert.True(t, history.called)
	require.Len(t, history.rows, 1)
	assert.Equal(t, historystore.AgregadoIzquierda, history.rows[0].Segments[0].Kind)
	assert.Contains(t, result.OperationMessages, "historial_muestras: actualizado")
}
