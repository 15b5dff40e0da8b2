// Package fsc models Fourier Shell Correlation curves and writes them in
// the XML layout EMDB expects alongside a deposited map.
package fsc

import (
	"encoding/xml"
	"fmt"
	"io"
)

// FSC is a single Fourier Shell Correlation curve: spatial frequency
// (1/Angstrom) against correlation coefficient.
type FSC struct {
	Title string
	X     []float64
	Y     []float64
}

// New builds an FSC curve, rejecting mismatched series lengths up front so
// export never has to.
func New(title string, x []float64, y []float64) (*FSC, error) {

	if len(x) != len(y) {
		return nil, fmt.Errorf("Mismatched FSC series, %d frequencies against %d correlations", len(x), len(y))
	}

	f := &FSC{
		Title: title,
		X:     x,
		Y:     y,
	}

	return f, nil
}

// Data returns the frequency and correlation series.
func (f *FSC) Data() ([]float64, []float64) {
	return f.X, f.Y
}

// SetOfFSCs is an ordered collection of FSC curves.
type SetOfFSCs struct {
	items []*FSC
}

// NewSetOfFSCs returns a set holding the given curves, in order.
func NewSetOfFSCs(curves ...*FSC) *SetOfFSCs {

	s := &SetOfFSCs{
		items: make([]*FSC, 0, len(curves)),
	}

	s.items = append(s.items, curves...)
	return s
}

// Append adds a curve to the set.
func (s *SetOfFSCs) Append(f *FSC) {
	s.items = append(s.items, f)
}

// Len returns the number of curves.
func (s *SetOfFSCs) Len() int {
	return len(s.items)
}

// Items returns the curves in insertion order.
func (s *SetOfFSCs) Items() []*FSC {
	return s.items
}

type xmlCoordinate struct {
	X float64 `xml:"x"`
	Y float64 `xml:"y"`
}

type xmlFSC struct {
	XMLName     xml.Name        `xml:"fsc"`
	Title       string          `xml:"title,attr"`
	XAxis       string          `xml:"xaxis,attr"`
	YAxis       string          `xml:"yaxis,attr"`
	Coordinates []xmlCoordinate `xml:"coordinate"`
}

// WriteXML writes the curve to w in the EMDB deposition layout: an <fsc>
// element with title/axis attributes and one <coordinate> per point.
func (f *FSC) WriteXML(w io.Writer) error {

	coords := make([]xmlCoordinate, len(f.X))

	for i := range f.X {
		coords[i] = xmlCoordinate{
			X: f.X[i],
			Y: f.Y[i],
		}
	}

	doc := xmlFSC{
		Title:       f.Title,
		XAxis:       "Resolution (A-1)",
		YAxis:       "Correlation Coefficient",
		Coordinates: coords,
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	err := enc.Encode(doc)

	if err != nil {
		return fmt.Errorf("Failed to encode FSC XML, %w", err)
	}

	// encoder does not emit a trailing newline
	_, err = w.Write([]byte("\n"))

	return err
}
