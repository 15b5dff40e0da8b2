package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/emkit/go-em-deposit/mrc"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func writeTestMRC(t *testing.T, path string) {

	hdr := &mrc.Header{
		Nx:   2,
		Ny:   2,
		Nz:   2,
		Mode: mrc.ModeFloat32,
		Mx:   2,
		My:   2,
		Mz:   2,
		MapC: 1,
		MapR: 2,
		MapS: 3,
	}

	data := []float32{0, 1, 2, 3, 4, 5, 6, 7}

	fh, err := os.Create(path)
	require.NoError(t, err)

	err = mrc.Write(fh, hdr, data)
	require.NoError(t, err)

	err = fh.Close()
	require.NoError(t, err)
}

func TestDecoderForByExtension(t *testing.T) {

	fn, err := DecoderFor("vol.mrc")
	require.NoError(t, err)
	require.NotNil(t, fn)

	fn, err = DecoderFor("vol.spi")
	require.NoError(t, err)
	require.NotNil(t, fn)
}

func TestDecoderForSniffsMRC(t *testing.T) {

	path := filepath.Join(t.TempDir(), "volume.dat")
	writeTestMRC(t, path)

	fn, err := DecoderFor(path)
	require.NoError(t, err)

	hdr, data, err := fn(path)
	require.NoError(t, err)
	require.Equal(t, int32(2), hdr.Nx)
	require.Len(t, data, 8)
}

func TestRegisterDecoderTwice(t *testing.T) {

	err := RegisterDecoder(".mrc", DecodeSpider)
	require.Error(t, err)
}

func TestConvertStampsSamplingRate(t *testing.T) {

	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "volume.mrc")
	writeTestMRC(t, src)

	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)

	defer bucket.Close()

	opts := &ConvertOptions{
		SamplingRate: 1.5,
	}

	err = Convert(ctx, src, bucket, "main_map.mrc", opts)
	require.NoError(t, err)

	r, err := bucket.NewReader(ctx, "main_map.mrc", nil)
	require.NoError(t, err)

	defer r.Close()

	hdr, data, err := mrc.Read(r)
	require.NoError(t, err)

	require.Equal(t, mrc.ModeFloat32, hdr.Mode)
	require.InDelta(t, 1.5, hdr.VoxelSize(), 0.0001)
	require.Equal(t, float32(0), hdr.DMin)
	require.Equal(t, float32(7), hdr.DMax)
	require.Len(t, data, 8)
}

func TestConvertUnknownFormat(t *testing.T) {

	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "noise.bin")

	err := os.WriteFile(path, make([]byte, 2048), 0644)
	require.NoError(t, err)

	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)

	defer bucket.Close()

	err = Convert(ctx, path, bucket, "out.mrc", nil)
	require.Error(t, err)
}
