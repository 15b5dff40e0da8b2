package emobj

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemoveBaseExt(t *testing.T) {

	tests := map[string]string{
		"/data/mics/mic_0001.mrc": "mic_0001",
		"mic_0001.mrc":            "mic_0001",
		"mic_0001":                "mic_0001",
		"a/b/c.tar.gz":            "c.tar",
	}

	for path, expected := range tests {
		require.Equal(t, expected, RemoveBaseExt(path))
	}
}

func TestMicrographBaseName(t *testing.T) {

	mic := &Micrograph{
		ID:       1,
		FileName: "/project/mics/FoilHole_123.mrc",
	}

	require.Equal(t, "FoilHole_123", mic.BaseName())
}

func TestHalfMapList(t *testing.T) {

	vol := &Volume{
		Location: "vol.mrc",
	}

	require.False(t, vol.HasHalfMaps())

	vol.SetHalfMapList("half1.mrc, half2.mrc,")

	require.True(t, vol.HasHalfMaps())
	require.Equal(t, []string{"half1.mrc", "half2.mrc"}, vol.HalfMaps)
	require.Equal(t, "half1.mrc,half2.mrc", vol.HalfMapList())
}
