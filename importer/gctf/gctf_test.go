package gctf

import (
	"context"
	"testing"

	"github.com/emkit/go-em-deposit/emobj"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

const testLog = `Processing mic_0001.mrc
   21338.97   20987.13      42.52    0.56548  Final Values

Resolution limit estimated by EPA:      4.123
Processing done.
`

func newTestImporter(t *testing.T, key string, body string) *Importer {

	ctx := context.Background()

	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)

	t.Cleanup(func() {
		bucket.Close()
	})

	err = bucket.WriteAll(ctx, key, []byte(body), nil)
	require.NoError(t, err)

	return &Importer{bucket: bucket}
}

func TestImportLog(t *testing.T) {

	ctx := context.Background()

	im := newTestImporter(t, "mic_0001_gctf.log", testLog)

	mic := &emobj.Micrograph{ID: 1, FileName: "mic_0001.mrc"}

	ctf, err := im.ImportCTF(ctx, mic, "mic_0001_gctf.log")
	require.NoError(t, err)

	require.Equal(t, 21338.97, ctf.DefocusU)
	require.Equal(t, 20987.13, ctf.DefocusV)
	require.Equal(t, 42.52, ctf.DefocusAngle)
	require.Equal(t, 0.56548, ctf.FitQuality)
	require.Equal(t, 4.123, ctf.Resolution)
	require.Equal(t, mic, ctf.Micrograph)
}

func TestImportLogWithoutFinalValues(t *testing.T) {

	ctx := context.Background()

	im := newTestImporter(t, "broken.log", "Processing mic_0001.mrc\nProcessing done.\n")

	mic := &emobj.Micrograph{ID: 1, FileName: "mic_0001.mrc"}

	_, err := im.ImportCTF(ctx, mic, "broken.log")
	require.Error(t, err)
}
