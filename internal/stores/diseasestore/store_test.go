package diseasestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donpedromz/bioguard/internal/domain"
	"github.com/donpedromz/bioguard/internal/errs"
	"github.com/donpedromz/bioguard/internal/integrity"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func sampleDisease() domain.Disease {
	return domain.Disease{
		Name:            "ebola",
		Infectiousness:  domain.InfectiousnessAlta,
		GeneticSequence: "GAGTATGTGAATAGATATATATTAGTAGTAGTAAAGTT",
	}
}

func TestSaveWritesHashNamedFile(t *testing.T) {
	s := newStore(t)
	saved, err := s.Save(sampleDisease())
	require.NoError(t, err)

	wantName := integrity.Hash(saved.Canonical()) + extension
	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, wantName, entries[0].Name())
}

func TestSaveDuplicateConflicts(t *testing.T) {
	s := newStore(t)
	_, err := s.Save(sampleDisease())
	require.NoError(t, err)

	_, err = s.Save(sampleDisease())
	require.Error(t, err)
	assert.Equal(t, errs.Conflict, errs.KindOf(err))
}

func TestFindAllSkipsCorruptFiles(t *testing.T) {
	s := newStore(t)
	_, err := s.Save(sampleDisease())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "deadbeef.fasta"), []byte("not fasta at all"), 0o644))

	diseases, err := s.FindAll()
	require.NoError(t, err)
	require.Len(t, diseases, 1)
	assert.Equal(t, "ebola", diseases[0].Name)
}

func TestFindAllStableUnderPermutation(t *testing.T) {
	s := newStore(t)
	d1 := domain.Disease{Name: "alpha", Infectiousness: domain.InfectiousnessBaja, GeneticSequence: "ACGTACGTACGTACG"}
	d2 := domain.Disease{Name: "beta", Infectiousness: domain.InfectiousnessMedia, GeneticSequence: "TTTTTTTTTTTTTTT"}
	_, err := s.Save(d1)
	require.NoError(t, err)
	_, err = s.Save(d2)
	require.NoError(t, err)

	first, err := s.FindAll()
	require.NoError(t, err)
	second, err := s.FindAll()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
