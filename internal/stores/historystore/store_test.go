package historystore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentsEmptyInputIsNoMatch(t *testing.T) {
	assert.Equal(t, []Segment{{Start: -1, End: -1, Kind: SinCoincidencia}}, Segments("ACGT", ""))
	assert.Equal(t, []Segment{{Start: -1, End: -1, Kind: SinCoincidencia}}, Segments("", "ACGT"))
}

func TestSegmentsPreviousContainsCurrentBothSides(t *testing.T) {
	// previous = "XXACGTYY", current = "ACGT" at index 2; trailing 2 chars remain.
	segs := Segments("ACGT", "XXACGTYY")
	assert.Equal(t, []Segment{
		{Start: 0, End: 1, Kind: ReduccionIzquierda},
		{Start: 6, End: 7, Kind: ReduccionDerecha},
	}, segs)
}

func TestSegmentsIdenticalSequencesIsSinCambios(t *testing.T) {
	assert.Equal(t, []Segment{{Start: 0, End: 3, Kind: SinCambios}}, Segments("ACGT", "ACGT"))
}

func TestSegmentsAgregadoIzquierda(t *testing.T) {
	// Matches end-to-end scenario 6: current prepends one base to previous.
	segs := Segments("AGAGTATGTGAA", "GAGTATGTGAA")
	assert.Equal(t, []Segment{{Start: 0, End: 0, Kind: AgregadoIzquierda}}, segs)
}

func TestSegmentsNoMatchEitherWay(t *testing.T) {
	segs := Segments("ACGT", "TTTT")
	assert.Equal(t, []Segment{{Start: -1, End: -1, Kind: SinCoincidencia}}, segs)
}

func TestStoreSaveWritesRows(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	rows := []Row{
		{PreviousSampleDate: "2025-02-19", Segments: []Segment{{Start: 0, End: 0, Kind: AgregadoIzquierda}}},
	}
	require.NoError(t, s.Save("patient-1", "diag-2", "2025-02-20", rows))

	data, err := os.ReadFile(filepath.Join(root, "patient-1", historyDir, "2025-02-20_diag-2.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), header)
	assert.Contains(t, string(data), "2025-02-19,0,0,agregado_izquierda")
}
