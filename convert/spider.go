package convert

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/emkit/go-em-deposit/mrc"
)

// SPIDER stores its header as a block of float32 words. These are the
// (1-indexed) words we care about.
const (
	spiderNslice = 1  // nz
	spiderNrow   = 2  // ny
	spiderIform  = 5  // 1 = 2D image, 3 = 3D volume
	spiderNsam   = 12 // nx
	spiderLabrec = 13 // header length in records
	spiderLabbyt = 22 // header length in bytes
	spiderLenbyt = 23 // record length in bytes
)

func spiderWord(head []byte, word int) float32 {

	off := (word - 1) * 4

	if off+4 > len(head) {
		return 0
	}

	return math.Float32frombits(binary.LittleEndian.Uint32(head[off:]))
}

func isWholePositive(v float32) bool {
	return v > 0 && v == float32(int32(v))
}

// looksLikeSpider applies the internal-consistency checks SPIDER files
// satisfy: whole positive dimensions, a known iform, and a header length
// that is labrec records of lenbyt bytes.
func looksLikeSpider(head []byte) bool {

	nslice := spiderWord(head, spiderNslice)
	nrow := spiderWord(head, spiderNrow)
	iform := spiderWord(head, spiderIform)
	nsam := spiderWord(head, spiderNsam)
	labrec := spiderWord(head, spiderLabrec)
	labbyt := spiderWord(head, spiderLabbyt)
	lenbyt := spiderWord(head, spiderLenbyt)

	if !isWholePositive(nslice) || !isWholePositive(nrow) || !isWholePositive(nsam) {
		return false
	}

	switch int32(iform) {
	case 1, 3:
		// pass
	default:
		return false
	}

	if !isWholePositive(labrec) || !isWholePositive(labbyt) || !isWholePositive(lenbyt) {
		return false
	}

	if int32(labbyt) != int32(labrec)*int32(lenbyt) {
		return false
	}

	if int32(lenbyt) != int32(nsam)*4 {
		return false
	}

	return true
}

// DecodeSpider reads a SPIDER image or volume at path.
func DecodeSpider(path string) (*mrc.Header, []float32, error) {

	fh, err := os.Open(path)

	if err != nil {
		return nil, nil, fmt.Errorf("Failed to open %s, %w", path, err)
	}

	defer fh.Close()

	mm, err := mmap.Map(fh, mmap.RDONLY, 0)

	if err != nil {
		return nil, nil, fmt.Errorf("Failed to mmap %s, %w", path, err)
	}

	defer mm.Unmap()

	if len(mm) < spiderLenbyt*4 {
		return nil, nil, fmt.Errorf("Truncated SPIDER file %s", path)
	}

	if !looksLikeSpider(mm) {
		return nil, nil, fmt.Errorf("Not a SPIDER file: %s", path)
	}

	nz := int(spiderWord(mm, spiderNslice))
	ny := int(spiderWord(mm, spiderNrow))
	nx := int(spiderWord(mm, spiderNsam))
	labbyt := int(spiderWord(mm, spiderLabbyt))

	if int32(spiderWord(mm, spiderIform)) == 1 {
		nz = 1
	}

	n := nx * ny * nz

	if len(mm) < labbyt+n*4 {
		return nil, nil, fmt.Errorf("Truncated SPIDER data section in %s", path)
	}

	data := make([]float32, n)

	for i := 0; i < n; i++ {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(mm[labbyt+i*4:]))
	}

	hdr := &mrc.Header{
		Nx:   int32(nx),
		Ny:   int32(ny),
		Nz:   int32(nz),
		Mode: mrc.ModeFloat32,
		Mx:   int32(nx),
		My:   int32(ny),
		Mz:   int32(nz),
		MapC: 1,
		MapR: 2,
		MapS: 3,
	}

	return hdr, data, nil
}
