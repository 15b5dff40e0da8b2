package atomstruct

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPDB = `HEADER    VIRAL PROTEIN                           27-MAR-20   6W41
CRYST1    1.000    1.000    1.000  90.00  90.00  90.00 P 1           1
ATOM      1  N   MET A   1      38.012  13.661  10.810  1.00 20.00           N
ATOM      2  CA  MET A   1      39.110  14.520  11.230  1.00 21.50           C
HETATM    3 ZN    ZN A 101      10.000  12.000  14.000  1.00 30.00          ZN
END
`

func TestParsePDB(t *testing.T) {

	s, err := ParsePDB(strings.NewReader(testPDB))
	require.NoError(t, err)

	require.Equal(t, "6w41", s.ID)
	require.NotNil(t, s.Cell)
	require.Equal(t, 1.0, s.Cell.A)
	require.Equal(t, 90.0, s.Cell.Alpha)
	require.Equal(t, "P 1", s.Cell.SpaceGroup)
	require.Equal(t, 1, s.Cell.Z)

	require.Len(t, s.Atoms, 3)

	first := s.Atoms[0]
	require.Equal(t, 1, first.Serial)
	require.Equal(t, "N", first.Name)
	require.Equal(t, "MET", first.ResName)
	require.Equal(t, "A", first.ChainID)
	require.Equal(t, 1, first.ResSeq)
	require.Equal(t, 38.012, first.X)
	require.Equal(t, 13.661, first.Y)
	require.Equal(t, 10.810, first.Z)
	require.Equal(t, 1.0, first.Occupancy)
	require.Equal(t, 20.0, first.BFactor)
	require.Equal(t, "N", first.Element)
	require.False(t, first.Hetero)

	last := s.Atoms[2]
	require.True(t, last.Hetero)
	require.Equal(t, "ZN", last.Element)
	require.Equal(t, 101, last.ResSeq)
}

func TestParsePDBWithoutAtoms(t *testing.T) {

	_, err := ParsePDB(strings.NewReader("HEADER    TEST\nEND\n"))
	require.Error(t, err)
}

func TestGuessElement(t *testing.T) {

	tests := map[string]string{
		"N":   "N",
		"CA":  "C",
		"CB":  "C",
		"OXT": "O",
		"FE":  "FE",
		"ZN":  "ZN",
		"MG":  "MG",
		"1H":  "H",
	}

	for name, expected := range tests {
		require.Equal(t, expected, guessElement(name), name)
	}
}
