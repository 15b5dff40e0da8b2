package atomstruct

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// field extracts the 1-indexed, inclusive column range PDB records are
// defined in terms of, trimmed of padding.
func field(line string, from int, to int) string {

	if len(line) < from {
		return ""
	}

	if len(line) < to {
		to = len(line)
	}

	return strings.TrimSpace(line[from-1 : to])
}

func floatField(line string, from int, to int) (float64, error) {

	s := field(line, from, to)

	if s == "" {
		return 0, nil
	}

	return strconv.ParseFloat(s, 64)
}

func intField(line string, from int, to int) (int, error) {

	s := field(line, from, to)

	if s == "" {
		return 0, nil
	}

	return strconv.Atoi(s)
}

// ParsePDB reads a PDB-format structure from r. Only the records a
// deposition conversion needs are kept: HEADER, CRYST1, MODEL, ATOM,
// HETATM. Everything else is passed over.
func ParsePDB(r io.Reader) (*Structure, error) {

	s := &Structure{
		Atoms: make([]*Atom, 0),
	}

	model := 1
	lineno := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)

	for scanner.Scan() {

		line := scanner.Text()
		lineno += 1

		if len(line) < 6 {
			continue
		}

		record := strings.TrimSpace(line[0:6])

		switch record {

		case "HEADER":

			s.ID = strings.ToLower(field(line, 63, 66))

		case "CRYST1":

			cell, err := parseCryst1(line)

			if err != nil {
				return nil, fmt.Errorf("Failed to parse CRYST1 at line %d, %w", lineno, err)
			}

			s.Cell = cell

		case "MODEL":

			m, err := intField(line, 11, 14)

			if err != nil {
				return nil, fmt.Errorf("Failed to parse MODEL at line %d, %w", lineno, err)
			}

			model = m

		case "ATOM", "HETATM":

			atom, err := parseAtomRecord(line)

			if err != nil {
				return nil, fmt.Errorf("Failed to parse %s at line %d, %w", record, lineno, err)
			}

			atom.Model = model
			s.Atoms = append(s.Atoms, atom)

		default:
			// pass
		}
	}

	err := scanner.Err()

	if err != nil {
		return nil, fmt.Errorf("Failed to read PDB input, %w", err)
	}

	err = s.Validate()

	if err != nil {
		return nil, err
	}

	return s, nil
}

func parseCryst1(line string) (*Cell, error) {

	a, err := floatField(line, 7, 15)

	if err != nil {
		return nil, err
	}

	b, err := floatField(line, 16, 24)

	if err != nil {
		return nil, err
	}

	c, err := floatField(line, 25, 33)

	if err != nil {
		return nil, err
	}

	alpha, err := floatField(line, 34, 40)

	if err != nil {
		return nil, err
	}

	beta, err := floatField(line, 41, 47)

	if err != nil {
		return nil, err
	}

	gamma, err := floatField(line, 48, 54)

	if err != nil {
		return nil, err
	}

	z, err := intField(line, 67, 70)

	if err != nil {
		return nil, err
	}

	cell := &Cell{
		A:          a,
		B:          b,
		C:          c,
		Alpha:      alpha,
		Beta:       beta,
		Gamma:      gamma,
		SpaceGroup: field(line, 56, 66),
		Z:          z,
	}

	return cell, nil
}

func parseAtomRecord(line string) (*Atom, error) {

	serial, err := intField(line, 7, 11)

	if err != nil {
		return nil, err
	}

	res_seq, err := intField(line, 23, 26)

	if err != nil {
		return nil, err
	}

	x, err := floatField(line, 31, 38)

	if err != nil {
		return nil, err
	}

	y, err := floatField(line, 39, 46)

	if err != nil {
		return nil, err
	}

	z, err := floatField(line, 47, 54)

	if err != nil {
		return nil, err
	}

	occ, err := floatField(line, 55, 60)

	if err != nil {
		return nil, err
	}

	bfactor, err := floatField(line, 61, 66)

	if err != nil {
		return nil, err
	}

	atom := &Atom{
		Hetero:    strings.HasPrefix(line, "HETATM"),
		Serial:    serial,
		Name:      field(line, 13, 16),
		AltLoc:    field(line, 17, 17),
		ResName:   field(line, 18, 20),
		ChainID:   field(line, 22, 22),
		ResSeq:    res_seq,
		ICode:     field(line, 27, 27),
		X:         x,
		Y:         y,
		Z:         z,
		Occupancy: occ,
		BFactor:   bfactor,
		Element:   field(line, 77, 78),
		Charge:    field(line, 79, 80),
	}

	if atom.Element == "" {
		atom.Element = guessElement(atom.Name)
	}

	return atom, nil
}

// guessElement derives the element symbol from an atom name when the
// element columns are empty, as older PDB files leave them.
func guessElement(name string) string {

	name = strings.TrimLeft(name, "0123456789")

	if name == "" {
		return ""
	}

	// Two-letter elements in common biomolecules keep both letters in the
	// name (FE, ZN, MG, ...); everything else is the first letter. CA is
	// left out: as a bare name it is almost always a C-alpha, not calcium.
	two := strings.ToUpper(name)

	for _, el := range []string{"FE", "ZN", "MG", "MN", "NA", "CL", "CU", "NI", "SE", "BR"} {
		if strings.HasPrefix(two, el) && len(name) <= 2 {
			return el
		}
	}

	return strings.ToUpper(name[0:1])
}
