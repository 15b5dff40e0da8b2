package eman2

import (
	"context"
	"testing"

	"github.com/emkit/go-em-deposit/emobj"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

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

func TestImportFlatJSON(t *testing.T) {

	ctx := context.Background()

	body := `{"defocus": 2.13, "dfdiff": 0.05, "dfang": 42.5}`

	im := newTestImporter(t, "mic_0001_info.json", body)

	mic := &emobj.Micrograph{ID: 1, FileName: "mic_0001.mrc"}

	ctf, err := im.ImportCTF(ctx, mic, "mic_0001_info.json")
	require.NoError(t, err)

	require.InDelta(t, 21550.0, ctf.DefocusU, 0.001)
	require.InDelta(t, 21050.0, ctf.DefocusV, 0.001)
	require.Equal(t, 42.5, ctf.DefocusAngle)
	require.Equal(t, mic, ctf.Micrograph)
}

func TestImportWrappedCtf(t *testing.T) {

	ctx := context.Background()

	// the shape EMAN2 info files use: a type tag and a parameter dict
	body := `{"ctf": ["EMAN2Ctf", {"defocus": 2.13, "dfdiff": 0.05, "dfang": 42.5, "voltage": 300.0}]}`

	im := newTestImporter(t, "mic_0001_info.json", body)

	mic := &emobj.Micrograph{ID: 1, FileName: "mic_0001.mrc"}

	ctf, err := im.ImportCTF(ctx, mic, "mic_0001_info.json")
	require.NoError(t, err)

	require.InDelta(t, 21550.0, ctf.DefocusU, 0.001)
	require.InDelta(t, 21050.0, ctf.DefocusV, 0.001)
}

func TestImportInvalidJSON(t *testing.T) {

	ctx := context.Background()

	im := newTestImporter(t, "broken.json", "{not json")

	mic := &emobj.Micrograph{ID: 1, FileName: "mic_0001.mrc"}

	_, err := im.ImportCTF(ctx, mic, "broken.json")
	require.Error(t, err)
}

func TestImportMissingDefocus(t *testing.T) {

	ctx := context.Background()

	im := newTestImporter(t, "empty.json", `{"quality": 5}`)

	mic := &emobj.Micrograph{ID: 1, FileName: "mic_0001.mrc"}

	_, err := im.ImportCTF(ctx, mic, "empty.json")
	require.Error(t, err)
}
