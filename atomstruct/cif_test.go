package atomstruct

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStructure() *Structure {

	return &Structure{
		ID: "6w41",
		Cell: &Cell{
			A:          1.0,
			B:          1.0,
			C:          1.0,
			Alpha:      90.0,
			Beta:       90.0,
			Gamma:      90.0,
			SpaceGroup: "P 1",
			Z:          1,
		},
		Atoms: []*Atom{
			{
				Serial:    1,
				Name:      "N",
				ResName:   "MET",
				ChainID:   "A",
				ResSeq:    1,
				X:         38.012,
				Y:         13.661,
				Z:         10.810,
				Occupancy: 1.0,
				BFactor:   20.0,
				Element:   "N",
				Model:     1,
			},
			{
				Hetero:    true,
				Serial:    2,
				Name:      "ZN",
				ResName:   "ZN",
				ChainID:   "A",
				ResSeq:    101,
				X:         10.0,
				Y:         12.0,
				Z:         14.0,
				Occupancy: 1.0,
				BFactor:   30.0,
				Element:   "ZN",
				Model:     1,
			},
		},
	}
}

func TestWriteParseRoundTrip(t *testing.T) {

	s := testStructure()

	var buf bytes.Buffer

	err := WriteMmCIF(&buf, s)
	require.NoError(t, err)

	body := buf.String()

	require.True(t, strings.HasPrefix(body, "data_6w41\n"))
	require.Contains(t, body, "_entry.id 6w41\n")
	require.Contains(t, body, "_cell.length_a 1.000\n")
	require.Contains(t, body, "_symmetry.space_group_name_H-M 'P 1'\n")
	require.Contains(t, body, "_atom_site.Cartn_x\n")

	got, err := ParseCIF(strings.NewReader(body))
	require.NoError(t, err)

	require.Equal(t, "6w41", got.ID)
	require.NotNil(t, got.Cell)
	require.Equal(t, 1.0, got.Cell.A)
	require.Equal(t, "P 1", got.Cell.SpaceGroup)

	require.Len(t, got.Atoms, 2)

	first := got.Atoms[0]
	require.Equal(t, "N", first.Name)
	require.Equal(t, "MET", first.ResName)
	require.Equal(t, 38.012, first.X)
	require.False(t, first.Hetero)

	last := got.Atoms[1]
	require.True(t, last.Hetero)
	require.Equal(t, "ZN", last.Element)
	require.Equal(t, 101, last.ResSeq)
}

func TestParseCIFNonCanonicalColumns(t *testing.T) {

	doc := `data_test
loop_
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.label_atom_id
_atom_site.group_PDB
1.0 2.0 3.0 CA ATOM
`

	s, err := ParseCIF(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, s.Atoms, 1)
	require.Equal(t, "CA", s.Atoms[0].Name)
	require.Equal(t, 1.0, s.Atoms[0].X)
	require.Equal(t, 3.0, s.Atoms[0].Z)
}

func TestParseCIFShortRow(t *testing.T) {

	doc := `data_test
loop_
_atom_site.Cartn_x
_atom_site.Cartn_y
1.0
`

	_, err := ParseCIF(strings.NewReader(doc))
	require.Error(t, err)
}

func TestSplitCifFields(t *testing.T) {

	fields := splitCifFields(`ATOM 1 'P 1' "quoted value" plain`)
	require.Equal(t, []string{"ATOM", "1", "P 1", "quoted value", "plain"}, fields)
}
