package patientsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donpedromz/bioguard/internal/domain"
)

type fakeStore struct {
	saved domain.Patient
	err   error
}

func (f *fakeStore) Save(p domain.Patient) (domain.Patient, error) {
	if f.err != nil {
		return domain.Patient{}, f.err
	}
	f.saved = p
	p.ID = "assigned-id"
	return p, nil
}

func TestRegisterDelegatesToStore(t *testing.T) {
	store := &fakeStore{}
	svc := New(store)

	got, err := svc.Register(domain.Patient{Document: "1"})
	require.NoError(t, err)
	assert.Equal(t, "assigned-id", got.ID)
	assert.Equal(t, "1", store.saved.Document)
}
