package diseasesvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donpedromz/bioguard/internal/domain"
)

type fakeStore struct {
	saved domain.Disease
}

func (f *fakeStore) Save(d domain.Disease) (domain.Disease, error) {
	f.saved = d
	d.ID = "assigned-id"
	return d, nil
}

func TestRegisterDelegatesToStore(t *testing.T) {
	store := &fakeStore{}
	svc := New(store)

	got, err := svc.Register(domain.Disease{Name: "ebola"})
	require.NoError(t, err)
	assert.Equal(t, "assigned-id", got.ID)
	assert.Equal(t, "ebola", store.saved.Name)
}
