// Package atomstruct converts atomic structure files between the PDB and
// mmCIF formats for deposition. It is a format converter, not a modelling
// tool: coordinates and labels pass through unchanged.
package atomstruct

import (
	"fmt"
)

// Atom is one ATOM or HETATM record.
type Atom struct {
	Hetero    bool
	Serial    int
	Name      string
	AltLoc    string
	ResName   string
	ChainID   string
	ResSeq    int
	ICode     string
	X, Y, Z   float64
	Occupancy float64
	BFactor   float64
	Element   string
	Charge    string
	Model     int
}

// Cell is the crystallographic cell (CRYST1 in PDB terms).
type Cell struct {
	A, B, C          float64
	Alpha, Beta, Gamma float64
	SpaceGroup       string
	Z                int
}

// Structure is the parsed content of a structure file, limited to what a
// deposition-ready mmCIF needs.
type Structure struct {
	// Entry ID, from the PDB HEADER id code or the cif data block name.
	ID    string
	Cell  *Cell
	Atoms []*Atom
}

// Validate applies the basic sanity checks both converters rely on.
func (s *Structure) Validate() error {

	if len(s.Atoms) == 0 {
		return fmt.Errorf("Structure has no atoms")
	}

	return nil
}
