package reportstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendWritesOneRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	s, err := New(path)
	require.NoError(t, err)

	require.NoError(t, s.Append("99887766", 3, 3, nil, []string{"a", "b", "c"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), Header)
	assert.Contains(t, string(data), "99887766,3,3,,a|b|c")
}

func TestHeaderRestoredWhenFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := New(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header+"\n", string(data))
}
