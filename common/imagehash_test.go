package common

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func TestImageHashes(t *testing.T) {

	ctx := context.Background()

	im := image.NewRGBA(image.Rect(0, 0, 8, 8))

	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			im.Set(x, y, color.RGBA{uint8(x * 32), uint8(y * 32), 128, 255})
		}
	}

	var buf bytes.Buffer

	err := png.Encode(&buf, im)
	require.NoError(t, err)

	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)

	defer bucket.Close()

	err = bucket.WriteAll(ctx, "snapshot.png", buf.Bytes(), nil)
	require.NoError(t, err)

	hashes, err := ImageHashes(ctx, bucket, "snapshot.png")
	require.NoError(t, err)

	require.Len(t, hashes, 2)

	approaches := make(map[string]bool)

	for _, h := range hashes {
		approaches[h.Approach] = true
		require.NotEmpty(t, h.Hash)
	}

	require.True(t, approaches["avg"])
	require.True(t, approaches["diff"])
}

func TestImageHashesMissingKey(t *testing.T) {

	ctx := context.Background()

	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)

	defer bucket.Close()

	_, err = ImageHashes(ctx, bucket, "no-such-key.png")
	require.Error(t, err)
}
