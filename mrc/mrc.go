// Package mrc reads and writes volumes in the MRC2014 format, the format
// EMDB expects deposited maps in.
package mrc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the size of the fixed MRC header in bytes. The symmetry
// block (nsymbt) and any extended header follow it.
const HeaderSize = 1024

// Data modes defined by MRC2014 that we know how to decode.
const (
	ModeInt8    int32 = 0
	ModeInt16   int32 = 1
	ModeFloat32 int32 = 2
	ModeUint16  int32 = 6
)

// Header is the fixed 1024-byte MRC file header. Field order matters: it
// is decoded directly with encoding/binary.
type Header struct {
	Nx, Ny, Nz                int32
	Mode                      int32
	NxStart, NyStart, NzStart int32
	Mx, My, Mz                int32
	CellA                     [3]float32
	CellB                     [3]float32
	MapC, MapR, MapS          int32
	DMin, DMax, DMean         float32
	ISpg                      int32
	NSymBt                    int32
	Extra                     [25]int32
	Origin                    [3]float32
	Map                       [4]byte
	MachSt                    [4]byte
	RMS                       float32
	NLabl                     int32
	Labels                    [10][80]byte
}

// VoxelSize returns the voxel size in Angstroms along x, derived from the
// cell dimensions and sampling grid. Zero when the grid is unset.
func (h *Header) VoxelSize() float64 {

	if h.Mx == 0 {
		return 0
	}

	return float64(h.CellA[0]) / float64(h.Mx)
}

// NumVoxels returns nx * ny * nz.
func (h *Header) NumVoxels() int {
	return int(h.Nx) * int(h.Ny) * int(h.Nz)
}

func (h *Header) byteOrder() (binary.ByteOrder, error) {

	switch h.MachSt[0] {
	case 0x44, 0x41:
		return binary.LittleEndian, nil
	case 0x11:
		return binary.BigEndian, nil
	default:
		// Old files often leave the machine stamp empty. Fall back to
		// little-endian, which is what every current producer writes.
		return binary.LittleEndian, nil
	}
}

func modeSize(mode int32) (int, error) {

	switch mode {
	case ModeInt8:
		return 1, nil
	case ModeInt16, ModeUint16:
		return 2, nil
	case ModeFloat32:
		return 4, nil
	default:
		return 0, fmt.Errorf("Unsupported MRC mode %d", mode)
	}
}

// ReadHeader decodes the fixed header from r. The byte order is detected
// from the machine stamp, so the raw bytes are sniffed before decoding.
func ReadHeader(r io.Reader) (*Header, error) {

	raw := make([]byte, HeaderSize)

	_, err := io.ReadFull(r, raw)

	if err != nil {
		return nil, fmt.Errorf("Failed to read MRC header, %w", err)
	}

	return DecodeHeader(raw)
}

// DecodeHeader decodes a fixed header from raw, which must hold at least
// HeaderSize bytes.
func DecodeHeader(raw []byte) (*Header, error) {

	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("Short MRC header, %d bytes", len(raw))
	}

	if string(raw[208:211]) != "MAP" {
		return nil, fmt.Errorf("Missing MAP magic, not an MRC file")
	}

	var order binary.ByteOrder = binary.LittleEndian

	// word 54, the machine stamp, lives at byte offset 212
	if raw[212] == 0x11 {
		order = binary.BigEndian
	}

	hdr := new(Header)

	err := binary.Read(bytes.NewReader(raw[:HeaderSize]), order, hdr)

	if err != nil {
		return nil, fmt.Errorf("Failed to decode MRC header, %w", err)
	}

	if hdr.Nx <= 0 || hdr.Ny <= 0 || hdr.Nz <= 0 {
		return nil, fmt.Errorf("Invalid MRC dimensions %dx%dx%d", hdr.Nx, hdr.Ny, hdr.Nz)
	}

	_, err = modeSize(hdr.Mode)

	if err != nil {
		return nil, err
	}

	return hdr, nil
}

// DecodeData converts a raw data section into float32 samples according to
// the header's mode and byte order.
func DecodeData(hdr *Header, raw []byte) ([]float32, error) {

	order, err := hdr.byteOrder()

	if err != nil {
		return nil, err
	}

	sz, err := modeSize(hdr.Mode)

	if err != nil {
		return nil, err
	}

	n := hdr.NumVoxels()

	if len(raw) < n*sz {
		return nil, fmt.Errorf("Truncated MRC data section, have %d bytes, want %d", len(raw), n*sz)
	}

	data := make([]float32, n)

	switch hdr.Mode {

	case ModeInt8:

		for i := 0; i < n; i++ {
			data[i] = float32(int8(raw[i]))
		}

	case ModeInt16:

		for i := 0; i < n; i++ {
			data[i] = float32(int16(order.Uint16(raw[i*2:])))
		}

	case ModeUint16:

		for i := 0; i < n; i++ {
			data[i] = float32(order.Uint16(raw[i*2:]))
		}

	case ModeFloat32:

		for i := 0; i < n; i++ {
			data[i] = math.Float32frombits(order.Uint32(raw[i*4:]))
		}
	}

	return data, nil
}

// Read decodes a complete MRC volume from r, returning the header and the
// data as float32 samples regardless of the stored mode.
func Read(r io.Reader) (*Header, []float32, error) {

	hdr, err := ReadHeader(r)

	if err != nil {
		return nil, nil, err
	}

	if hdr.NSymBt > 0 {

		// skip the symmetry / extended header block
		_, err = io.CopyN(io.Discard, r, int64(hdr.NSymBt))

		if err != nil {
			return nil, nil, fmt.Errorf("Failed to skip extended header, %w", err)
		}
	}

	sz, _ := modeSize(hdr.Mode)

	raw := make([]byte, hdr.NumVoxels()*sz)

	_, err = io.ReadFull(r, raw)

	if err != nil {
		return nil, nil, fmt.Errorf("Failed to read MRC data, %w", err)
	}

	data, err := DecodeData(hdr, raw)

	if err != nil {
		return nil, nil, err
	}

	return hdr, data, nil
}

// Write encodes data as a mode 2 (float32) little-endian MRC2014 volume.
// Density statistics and the machine stamp are recomputed; everything else
// is taken from hdr.
func Write(w io.Writer, hdr *Header, data []float32) error {

	n := hdr.NumVoxels()

	if len(data) != n {
		return fmt.Errorf("Data length %d does not match dimensions %dx%dx%d", len(data), hdr.Nx, hdr.Ny, hdr.Nz)
	}

	out := *hdr

	out.Mode = ModeFloat32
	out.NSymBt = 0
	out.Map = [4]byte{'M', 'A', 'P', ' '}
	out.MachSt = [4]byte{0x44, 0x44, 0x00, 0x00}

	// word 28 of the extra block is nversion
	out.Extra[3] = 20140

	out.DMin, out.DMax, out.DMean, out.RMS = stats(data)

	if out.NLabl == 0 {
		var label [80]byte
		copy(label[:], "go-em-deposit: converted for deposition")
		out.Labels[0] = label
		out.NLabl = 1
	}

	err := binary.Write(w, binary.LittleEndian, &out)

	if err != nil {
		return fmt.Errorf("Failed to write MRC header, %w", err)
	}

	err = binary.Write(w, binary.LittleEndian, data)

	if err != nil {
		return fmt.Errorf("Failed to write MRC data, %w", err)
	}

	return nil
}

func stats(data []float32) (float32, float32, float32, float32) {

	if len(data) == 0 {
		return 0, 0, 0, 0
	}

	min := data[0]
	max := data[0]
	sum := 0.0

	for _, v := range data {

		if v < min {
			min = v
		}

		if v > max {
			max = v
		}

		sum += float64(v)
	}

	mean := sum / float64(len(data))

	var ss float64

	for _, v := range data {
		d := float64(v) - mean
		ss += d * d
	}

	rms := math.Sqrt(ss / float64(len(data)))

	return min, max, float32(mean), float32(rms)
}
