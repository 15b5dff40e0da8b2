package xmipp

import (
	"context"
	"testing"

	"github.com/emkit/go-em-deposit/emobj"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

const testCtfparam = `# XMIPP_STAR_1 *
data_fullMicrograph
 _ctfSamplingRate 1.06
 _ctfVoltage 300
 _ctfDefocusU 21338.97
 _ctfDefocusV 20987.13
 _ctfDefocusAngle 42.52
 _ctfCritFitting 0.045
 _ctfCritMaxFreq 4.9
`

const testCtfparamOld = `data_fullMicrograph
 _ctfDefocusU 21338.97
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

func TestImportCtfparam(t *testing.T) {

	ctx := context.Background()

	im := newTestImporter(t, "mic_0001.ctfparam", testCtfparam)

	mic := &emobj.Micrograph{ID: 1, FileName: "mic_0001.mrc"}

	ctf, err := im.ImportCTF(ctx, mic, "mic_0001.ctfparam")
	require.NoError(t, err)

	require.Equal(t, 21338.97, ctf.DefocusU)
	require.Equal(t, 20987.13, ctf.DefocusV)
	require.Equal(t, 42.52, ctf.DefocusAngle)
	require.Equal(t, 0.045, ctf.FitQuality)
	require.Equal(t, 4.9, ctf.Resolution)
	require.Equal(t, mic, ctf.Micrograph)
}

func TestImportSingleDefocus(t *testing.T) {

	ctx := context.Background()

	im := newTestImporter(t, "mic_0001.ctfparam", testCtfparamOld)

	mic := &emobj.Micrograph{ID: 1, FileName: "mic_0001.mrc"}

	ctf, err := im.ImportCTF(ctx, mic, "mic_0001.ctfparam")
	require.NoError(t, err)

	require.Equal(t, 21338.97, ctf.DefocusU)
	require.Equal(t, 21338.97, ctf.DefocusV)
}

func TestImportMissingDefocus(t *testing.T) {

	ctx := context.Background()

	im := newTestImporter(t, "mic_0001.ctfparam", "data_fullMicrograph\n _ctfVoltage 300\n")

	mic := &emobj.Micrograph{ID: 1, FileName: "mic_0001.mrc"}

	_, err := im.ImportCTF(ctx, mic, "mic_0001.ctfparam")
	require.Error(t, err)
}
