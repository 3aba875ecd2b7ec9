package denoise

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yesilcimenahmet/oidn/pkg/tensor"
)

func TestPFMRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "img.pfm")

	orig := tensor.New(1, 3, 3, 5)
	for i := range orig.Data {
		orig.Data[i] = float32(i)*0.37 - 1.0 // exercise negatives
	}

	require.NoError(t, writePFM(filename, orig))
	back, err := readPFM(filename)
	require.NoError(t, err)

	require.Equal(t, orig.H, back.H)
	require.Equal(t, orig.W, back.W)
	require.Equal(t, orig.Data, back.Data, "pfm stores raw float32, round trip is exact")
}

func TestComposerWritesRequestedFormats(t *testing.T) {
	dir := t.TempDir()
	cp := Composer{Kind: FeatureHDR, Formats: []string{"png", "tif", "hdr", "pfm"}}

	linear := constTensor(0.5, 3, 4, 4)
	display := constTensor(0.73, 3, 4, 4)
	require.NoError(t, cp.Write(filepath.Join(dir, "scene_0016"), linear, display))

	for _, want := range []string{
		"scene_0016.hdr.png",
		"scene_0016.hdr.tif",
		"scene_0016.hdr.hdr",
		"scene_0016.hdr.pfm",
	} {
		_, err := os.Stat(filepath.Join(dir, want))
		require.NoError(t, err, want)
	}
}

func TestComposerExtendedFormatsUseLinearTensor(t *testing.T) {
	dir := t.TempDir()
	cp := Composer{Kind: FeatureHDR, Formats: []string{"pfm"}}

	linear := constTensor(5.0, 3, 2, 2) // outside [0,1]
	display := constTensor(1.0, 3, 2, 2)
	require.NoError(t, cp.Write(filepath.Join(dir, "x"), linear, display))

	back, err := readPFM(filepath.Join(dir, "x.hdr.pfm"))
	require.NoError(t, err)
	require.Equal(t, float32(5.0), back.At(0, 0, 0, 0))
}

func TestComposerRemapsSignedFeatures(t *testing.T) {
	dir := t.TempDir()
	cp := Composer{Kind: FeatureNormal, Formats: []string{"pfm"}}

	linear := constTensor(0.75, 3, 2, 2) // [0,1] storage for a [-1,1] feature
	display := linear.Clone()
	require.NoError(t, cp.Write(filepath.Join(dir, "n"), linear, display))

	back, err := readPFM(filepath.Join(dir, "n.nrm.pfm"))
	require.NoError(t, err)
	require.InDelta(t, 0.5, float64(back.At(0, 0, 0, 0)), 1e-6, "0.75 -> 2*0.75-1")
	require.Equal(t, float32(0.75), linear.At(0, 0, 0, 0), "remap must not touch the caller's tensor")
}

func TestComposerSH1WritesThreeBases(t *testing.T) {
	dir := t.TempDir()
	cp := Composer{Kind: FeatureSH1, Formats: []string{"pfm"}}

	linear := tensor.New(1, 9, 2, 2)
	for c := 0; c < 9; c++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				linear.Set(0, c, y, x, float32(c))
			}
		}
	}
	require.NoError(t, cp.Write(filepath.Join(dir, "s"), linear, linear.Clone()))

	for i, suffix := range []string{"sh1x", "sh1y", "sh1z"} {
		back, err := readPFM(filepath.Join(dir, "s."+suffix+".pfm"))
		require.NoError(t, err, suffix)
		// channel c stored as 2c-1 after the signed remap
		require.InDelta(t, float64(2*(3*i)-1), float64(back.At(0, 0, 0, 0)), 1e-6, suffix)
	}
}
