package atomstruct

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The atom_site columns a deposition mmCIF carries, in canonical order.
var atomSiteColumns = []string{
	"group_PDB",
	"id",
	"type_symbol",
	"label_atom_id",
	"label_alt_id",
	"label_comp_id",
	"label_asym_id",
	"label_entity_id",
	"label_seq_id",
	"pdbx_PDB_ins_code",
	"Cartn_x",
	"Cartn_y",
	"Cartn_z",
	"occupancy",
	"B_iso_or_equiv",
	"pdbx_formal_charge",
	"auth_seq_id",
	"auth_comp_id",
	"auth_asym_id",
	"auth_atom_id",
	"pdbx_PDB_model_num",
}

func cifValue(s string) string {

	if s == "" {
		return "?"
	}

	if strings.ContainsAny(s, " \t") {
		return "\"" + s + "\""
	}

	if strings.Contains(s, "'") {
		return "\"" + s + "\""
	}

	if strings.Contains(s, "\"") {
		return "'" + s + "'"
	}

	return s
}

// WriteMmCIF writes s to w as a deposition-ready mmCIF document: a named
// data block, _entry.id, the cell (when present) and a full _atom_site
// loop in canonical column order.
func WriteMmCIF(w io.Writer, s *Structure) error {

	err := s.Validate()

	if err != nil {
		return err
	}

	id := s.ID

	if id == "" {
		id = "xxxx"
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "data_%s\n", id)
	fmt.Fprintf(bw, "#\n")
	fmt.Fprintf(bw, "_entry.id %s\n", id)
	fmt.Fprintf(bw, "#\n")

	if s.Cell != nil {

		fmt.Fprintf(bw, "_cell.entry_id %s\n", id)
		fmt.Fprintf(bw, "_cell.length_a %.3f\n", s.Cell.A)
		fmt.Fprintf(bw, "_cell.length_b %.3f\n", s.Cell.B)
		fmt.Fprintf(bw, "_cell.length_c %.3f\n", s.Cell.C)
		fmt.Fprintf(bw, "_cell.angle_alpha %.2f\n", s.Cell.Alpha)
		fmt.Fprintf(bw, "_cell.angle_beta %.2f\n", s.Cell.Beta)
		fmt.Fprintf(bw, "_cell.angle_gamma %.2f\n", s.Cell.Gamma)

		if s.Cell.Z > 0 {
			fmt.Fprintf(bw, "_cell.Z_PDB %d\n", s.Cell.Z)
		}

		if s.Cell.SpaceGroup != "" {
			fmt.Fprintf(bw, "_symmetry.entry_id %s\n", id)
			fmt.Fprintf(bw, "_symmetry.space_group_name_H-M %s\n", cifValue(s.Cell.SpaceGroup))
		}

		fmt.Fprintf(bw, "#\n")
	}

	fmt.Fprintf(bw, "loop_\n")

	for _, col := range atomSiteColumns {
		fmt.Fprintf(bw, "_atom_site.%s\n", col)
	}

	for _, atom := range s.Atoms {

		group := "ATOM"

		if atom.Hetero {
			group = "HETATM"
		}

		alt := atom.AltLoc

		if alt == "" {
			alt = "."
		}

		icode := atom.ICode

		if icode == "" {
			icode = "?"
		}

		charge := atom.Charge

		if charge == "" {
			charge = "?"
		}

		seq := "."

		if atom.ResSeq != 0 {
			seq = strconv.Itoa(atom.ResSeq)
		}

		model := atom.Model

		if model == 0 {
			model = 1
		}

		fmt.Fprintf(bw, "%s %d %s %s %s %s %s 1 %s %s %.3f %.3f %.3f %.2f %.2f %s %d %s %s %s %d\n",
			group,
			atom.Serial,
			cifValue(atom.Element),
			cifValue(atom.Name),
			alt,
			cifValue(atom.ResName),
			cifValue(atom.ChainID),
			seq,
			icode,
			atom.X, atom.Y, atom.Z,
			atom.Occupancy,
			atom.BFactor,
			charge,
			atom.ResSeq,
			cifValue(atom.ResName),
			cifValue(atom.ChainID),
			cifValue(atom.Name),
			model)
	}

	fmt.Fprintf(bw, "#\n")

	return bw.Flush()
}

// splitCifFields splits a cif data row into fields, honouring single and
// double quoted values.
func splitCifFields(line string) []string {

	fields := make([]string, 0)

	i := 0
	n := len(line)

	for i < n {

		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i += 1
		}

		if i >= n {
			break
		}

		if line[i] == '\'' || line[i] == '"' {

			quote := line[i]
			i += 1
			start := i

			for i < n && line[i] != quote {
				i += 1
			}

			fields = append(fields, line[start:i])

			if i < n {
				i += 1
			}

			continue
		}

		start := i

		for i < n && line[i] != ' ' && line[i] != '\t' {
			i += 1
		}

		fields = append(fields, line[start:i])
	}

	return fields
}

func unknownToEmpty(s string) string {

	if s == "." || s == "?" {
		return ""
	}

	return s
}

// ParseCIF reads a cif or mmCIF structure from r, keeping the data block
// name, the cell and the atom_site loop. Columns are resolved by header
// name so non-canonical column orders parse fine, the way the pwem
// converters accept output from any upstream tool.
func ParseCIF(r io.Reader) (*Structure, error) {

	s := &Structure{
		Atoms: make([]*Atom, 0),
	}

	cell := &Cell{}
	have_cell := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)

	in_atom_loop := false
	in_loop_header := false
	atom_cols := make([]string, 0)
	lineno := 0

	setCellItem := func(tag string, value string) {

		f, err := strconv.ParseFloat(unknownToEmpty(value), 64)

		if err != nil {
			return
		}

		switch tag {
		case "_cell.length_a":
			cell.A = f
		case "_cell.length_b":
			cell.B = f
		case "_cell.length_c":
			cell.C = f
		case "_cell.angle_alpha":
			cell.Alpha = f
		case "_cell.angle_beta":
			cell.Beta = f
		case "_cell.angle_gamma":
			cell.Gamma = f
		case "_cell.Z_PDB":
			cell.Z = int(f)
		default:
			return
		}

		have_cell = true
	}

	for scanner.Scan() {

		line := strings.TrimSpace(scanner.Text())
		lineno += 1

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "data_") {
			s.ID = strings.TrimPrefix(line, "data_")
			in_atom_loop = false
			in_loop_header = false
			continue
		}

		if line == "loop_" {
			in_loop_header = true
			in_atom_loop = false
			atom_cols = atom_cols[:0]
			continue
		}

		if strings.HasPrefix(line, "_") {

			fields := splitCifFields(line)
			tag := fields[0]

			if in_loop_header {

				if strings.HasPrefix(tag, "_atom_site.") {
					in_atom_loop = true
					atom_cols = append(atom_cols, strings.TrimPrefix(tag, "_atom_site."))
				} else {
					in_atom_loop = false
				}

				continue
			}

			if len(fields) >= 2 {

				switch {
				case strings.HasPrefix(tag, "_cell."):
					setCellItem(tag, fields[1])
				case tag == "_entry.id":
					s.ID = fields[1]
				case tag == "_symmetry.space_group_name_H-M":

					if s.Cell == nil {
						s.Cell = cell
					}

					cell.SpaceGroup = fields[1]
					have_cell = true
				default:
					// pass
				}
			}

			continue
		}

		in_loop_header = false

		if !in_atom_loop {
			continue
		}

		fields := splitCifFields(line)

		if len(fields) < len(atom_cols) {
			return nil, fmt.Errorf("Short atom_site row at line %d, have %d fields, want %d", lineno, len(fields), len(atom_cols))
		}

		atom, err := atomFromCifRow(atom_cols, fields)

		if err != nil {
			return nil, fmt.Errorf("Failed to parse atom_site row at line %d, %w", lineno, err)
		}

		s.Atoms = append(s.Atoms, atom)
	}

	err := scanner.Err()

	if err != nil {
		return nil, fmt.Errorf("Failed to read cif input, %w", err)
	}

	if have_cell {
		s.Cell = cell
	}

	err = s.Validate()

	if err != nil {
		return nil, err
	}

	return s, nil
}

func atomFromCifRow(cols []string, fields []string) (*Atom, error) {

	get := func(name string) string {

		for i, col := range cols {
			if col == name {
				return unknownToEmpty(fields[i])
			}
		}

		return ""
	}

	getFloat := func(name string) (float64, error) {

		v := get(name)

		if v == "" {
			return 0, nil
		}

		return strconv.ParseFloat(v, 64)
	}

	getInt := func(name string) (int, error) {

		v := get(name)

		if v == "" {
			return 0, nil
		}

		return strconv.Atoi(v)
	}

	x, err := getFloat("Cartn_x")

	if err != nil {
		return nil, err
	}

	y, err := getFloat("Cartn_y")

	if err != nil {
		return nil, err
	}

	z, err := getFloat("Cartn_z")

	if err != nil {
		return nil, err
	}

	occ, err := getFloat("occupancy")

	if err != nil {
		return nil, err
	}

	bfactor, err := getFloat("B_iso_or_equiv")

	if err != nil {
		return nil, err
	}

	serial, err := getInt("id")

	if err != nil {
		return nil, err
	}

	model, err := getInt("pdbx_PDB_model_num")

	if err != nil {
		return nil, err
	}

	name := get("auth_atom_id")

	if name == "" {
		name = get("label_atom_id")
	}

	res_name := get("auth_comp_id")

	if res_name == "" {
		res_name = get("label_comp_id")
	}

	chain := get("auth_asym_id")

	if chain == "" {
		chain = get("label_asym_id")
	}

	res_seq, err := getInt("auth_seq_id")

	if err != nil {
		return nil, err
	}

	if res_seq == 0 {

		res_seq, err = getInt("label_seq_id")

		if err != nil {
			return nil, err
		}
	}

	atom := &Atom{
		Hetero:    get("group_PDB") == "HETATM",
		Serial:    serial,
		Name:      name,
		AltLoc:    get("label_alt_id"),
		ResName:   res_name,
		ChainID:   chain,
		ResSeq:    res_seq,
		ICode:     get("pdbx_PDB_ins_code"),
		X:         x,
		Y:         y,
		Z:         z,
		Occupancy: occ,
		BFactor:   bfactor,
		Element:   get("type_symbol"),
		Charge:    get("pdbx_formal_charge"),
		Model:     model,
	}

	return atom, nil
}
