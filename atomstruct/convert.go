package atomstruct

import (
	"bytes"
	"fmt"
	"os"
)

// FromPDBToCIF converts a PDB file at src into an mmCIF file at dst.
func FromPDBToCIF(src string, dst string) error {

	fh, err := os.Open(src)

	if err != nil {
		return fmt.Errorf("Failed to open %s, %w", src, err)
	}

	s, err := ParsePDB(fh)

	fh.Close()

	if err != nil {
		return fmt.Errorf("Failed to parse %s, %w", src, err)
	}

	return writeStructure(dst, s)
}

// FromCIFToMmCIF normalises a cif file at src into a deposition-ready
// mmCIF at dst: canonical atom_site columns, an _entry.id, a named data
// block. src and dst may be the same path; the input is read fully before
// the output is written. The operation is idempotent.
func FromCIFToMmCIF(src string, dst string) error {

	body, err := os.ReadFile(src)

	if err != nil {
		return fmt.Errorf("Failed to read %s, %w", src, err)
	}

	s, err := ParseCIF(bytes.NewReader(body))

	if err != nil {
		return fmt.Errorf("Failed to parse %s, %w", src, err)
	}

	return writeStructure(dst, s)
}

func writeStructure(dst string, s *Structure) error {

	wr, err := os.Create(dst)

	if err != nil {
		return fmt.Errorf("Failed to create %s, %w", dst, err)
	}

	err = WriteMmCIF(wr, s)

	if err != nil {
		wr.Close()
		os.Remove(dst)
		return fmt.Errorf("Failed to write %s, %w", dst, err)
	}

	return wr.Close()
}
