package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
)

func TestDetectFormat(t *testing.T) {

	tests := map[string][]string{
		"ctffind": {"mic_0001.txt"},
		"xmipp":   {"mic_0001.ctfparam"},
		"eman2":   {"info/mic_0001_info.json"},
		"scipion": {"ctfs.sqlite"},
	}

	for expected, files := range tests {

		format, err := DetectFormat(files)
		require.NoError(t, err)
		require.Equal(t, expected, format)
	}

	// first recognisable extension wins
	format, err := DetectFormat([]string{"readme.md", "mic_0001.log"})
	require.NoError(t, err)
	require.Equal(t, "ctffind", format)

	_, err = DetectFormat([]string{"mic_0001.mrc"})
	require.Error(t, err)
}

func TestNewImporterUnknown(t *testing.T) {

	ctx := context.Background()

	_, err := NewImporter(ctx, "no-such-tool", (*blob.Bucket)(nil))
	require.Error(t, err)
}

func TestRegisterTwice(t *testing.T) {

	fn := func(ctx context.Context, bucket *blob.Bucket) (Importer, error) {
		return nil, nil
	}

	err := Register("register-twice-test", fn)
	require.NoError(t, err)

	err = Register("register-twice-test", fn)
	require.Error(t, err)
}
