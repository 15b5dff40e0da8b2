package fsc

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsMismatchedSeries(t *testing.T) {

	_, err := New("bad", []float64{0.1, 0.2}, []float64{1.0})
	require.Error(t, err)
}

func TestWriteXML(t *testing.T) {

	f, err := New("FSC(main_map.mrc)", []float64{0.05, 0.1, 0.2}, []float64{1.0, 0.9, 0.143})
	require.NoError(t, err)

	var buf bytes.Buffer

	err = f.WriteXML(&buf)
	require.NoError(t, err)

	body := buf.String()

	require.Contains(t, body, `<fsc title="FSC(main_map.mrc)" xaxis="Resolution (A-1)" yaxis="Correlation Coefficient">`)
	require.Contains(t, body, "<x>0.05</x>")
	require.Contains(t, body, "<y>0.143</y>")
	require.True(t, strings.HasSuffix(body, "</fsc>\n"))

	var doc struct {
		Coordinates []struct {
			X float64 `xml:"x"`
			Y float64 `xml:"y"`
		} `xml:"coordinate"`
	}

	err = xml.Unmarshal(buf.Bytes(), &doc)
	require.NoError(t, err)
	require.Len(t, doc.Coordinates, 3)
	require.Equal(t, 0.2, doc.Coordinates[2].X)
}

func TestSetOfFSCs(t *testing.T) {

	a, _ := New("a", []float64{0.1}, []float64{1.0})
	b, _ := New("b", []float64{0.2}, []float64{0.5})

	s := NewSetOfFSCs(a)
	s.Append(b)

	require.Equal(t, 2, s.Len())
	require.Equal(t, "a", s.Items()[0].Title)
	require.Equal(t, "b", s.Items()[1].Title)
}
