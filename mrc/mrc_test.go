package mrc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func testVolume() (*Header, []float32) {

	hdr := &Header{
		Nx:    4,
		Ny:    3,
		Nz:    2,
		Mode:  ModeFloat32,
		Mx:    4,
		My:    3,
		Mz:    2,
		CellA: [3]float32{4.24, 3.18, 2.12},
		MapC:  1,
		MapR:  2,
		MapS:  3,
	}

	data := make([]float32, hdr.NumVoxels())

	for i := range data {
		data[i] = float32(i) - 10.0
	}

	return hdr, data
}

func TestWriteReadRoundTrip(t *testing.T) {

	hdr, data := testVolume()

	var buf bytes.Buffer

	err := Write(&buf, hdr, data)
	require.NoError(t, err)

	require.Equal(t, HeaderSize+len(data)*4, buf.Len())

	got_hdr, got_data, err := Read(&buf)
	require.NoError(t, err)

	require.Equal(t, int32(4), got_hdr.Nx)
	require.Equal(t, int32(3), got_hdr.Ny)
	require.Equal(t, int32(2), got_hdr.Nz)
	require.Equal(t, ModeFloat32, got_hdr.Mode)
	require.Equal(t, int32(20140), got_hdr.Extra[3])
	require.Equal(t, data, got_data)

	require.Equal(t, float32(-10.0), got_hdr.DMin)
	require.Equal(t, float32(13.0), got_hdr.DMax)
	require.Equal(t, float32(1.5), got_hdr.DMean)
}

func TestVoxelSize(t *testing.T) {

	hdr, _ := testVolume()

	require.InDelta(t, 1.06, hdr.VoxelSize(), 0.0001)

	hdr.Mx = 0
	require.Equal(t, 0.0, hdr.VoxelSize())
}

func TestDecodeHeaderRejectsGarbage(t *testing.T) {

	raw := make([]byte, HeaderSize)

	_, err := DecodeHeader(raw)
	require.Error(t, err)

	_, err = DecodeHeader(raw[:100])
	require.Error(t, err)
}

func TestDecodeDataInt16(t *testing.T) {

	hdr := &Header{
		Nx:     2,
		Ny:     1,
		Nz:     1,
		Mode:   ModeInt16,
		MachSt: [4]byte{0x44, 0x44, 0x00, 0x00},
	}

	// -2 and 300, little-endian
	raw := []byte{0xfe, 0xff, 0x2c, 0x01}

	data, err := DecodeData(hdr, raw)
	require.NoError(t, err)
	require.Equal(t, []float32{-2, 300}, data)
}
