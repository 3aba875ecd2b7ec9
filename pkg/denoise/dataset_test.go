package denoise

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, filename string, v float64, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filename), 0755))

	img := image.NewRGBA64(image.Rectangle{Max: image.Point{w, h}})
	p := uint16(v * 65535.0)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA64{p, p, p, 0xFFFF})
		}
	}

	writer, err := os.Create(filename)
	require.NoError(t, err)
	defer writer.Close()
	require.NoError(t, png.Encode(writer, img))
}

func ldrFeatures() FeatureSet {
	return FeatureSet{Features: []Feature{FeatureLDR}}
}

func TestDiscoverGroups(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "scene1", "view_0016.ldr.png"), 0.5, 4, 4)
	writeTestPNG(t, filepath.Join(dir, "scene1", "view_0064.ldr.png"), 0.5, 4, 4)
	writeTestPNG(t, filepath.Join(dir, "scene1", "view_ref.ldr.png"), 0.25, 4, 4)
	writeTestPNG(t, filepath.Join(dir, "solo_0016.ldr.png"), 0.5, 4, 4)
	// A different feature's file must not create a sample
	writeTestPNG(t, filepath.Join(dir, "scene1", "view_0016.alb.png"), 0.5, 4, 4)
	// Nor unrelated files
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	groups, err := DiscoverGroups(dir, ldrFeatures())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	require.Equal(t, "scene1/view", groups[0].Name)
	require.Equal(t, []string{"scene1/view_0016", "scene1/view_0064"}, groups[0].Inputs)
	require.Equal(t, "scene1/view_ref", groups[0].Target)

	require.Equal(t, "solo", groups[1].Name)
	require.Equal(t, []string{"solo_0016"}, groups[1].Inputs)
	require.Equal(t, "", groups[1].Target)
}

func TestLoadFeaturesSingle(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a_0016.ldr.png"), 0.5, 6, 4)

	// writeTestPNG takes width then height: 6 wide, 4 high
	got, err := LoadFeatures(dir, "a_0016", ldrFeatures())
	require.NoError(t, err)
	require.Equal(t, 3, got.C)
	require.Equal(t, 4, got.H)
	require.Equal(t, 6, got.W)
	require.InDelta(t, 0.5, float64(got.At(0, 0, 2, 2)), 1e-3)
}

func TestLoadFeaturesConcatenatesAux(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a_0016.ldr.png"), 0.5, 4, 4)
	writeTestPNG(t, filepath.Join(dir, "a_0016.alb.png"), 0.75, 4, 4)
	writeTestPNG(t, filepath.Join(dir, "a_0016.nrm.png"), 0.25, 4, 4)

	fs, err := NewFeatureSet([]string{"ldr", "alb", "nrm"})
	require.NoError(t, err)

	got, err := LoadFeatures(dir, "a_0016", fs)
	require.NoError(t, err)
	require.Equal(t, 9, got.C)
	require.InDelta(t, 0.5, float64(got.At(0, 0, 0, 0)), 1e-3)
	require.InDelta(t, 0.75, float64(got.At(0, 3, 0, 0)), 1e-3)
	require.InDelta(t, 0.25, float64(got.At(0, 6, 0, 0)), 1e-3)
}

func TestLoadFeaturesMissingFile(t *testing.T) {
	_, err := LoadFeatures(t.TempDir(), "a_0016", ldrFeatures())
	require.Error(t, err)
}

func TestLoadFeaturesSH1FromPFM(t *testing.T) {
	dir := t.TempDir()
	// Write three signed-range basis files through the composer
	cp := Composer{Kind: FeatureSH1, Formats: []string{"pfm"}}
	orig := constTensor(0.75, 9, 4, 4)
	require.NoError(t, cp.Write(filepath.Join(dir, "a_0016"), orig, orig.Clone()))

	fs, err := NewFeatureSet([]string{"sh1"})
	require.NoError(t, err)
	got, err := LoadFeatures(dir, "a_0016", fs)
	require.NoError(t, err)
	require.Equal(t, 9, got.C)
	// Composer remapped to [-1,1] on disk; the loader brings it back
	require.InDelta(t, 0.75, float64(got.At(0, 4, 1, 1)), 1e-6)
}

func TestLoadGroupMetadata(t *testing.T) {
	dir := t.TempDir()
	sidecar := []byte(`{"exposure": 4.5, "camera": "cam0"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), sidecar, 0644))

	exposure, raw, err := LoadGroupMetadata(dir, "a")
	require.NoError(t, err)
	require.Equal(t, 4.5, exposure)
	require.Equal(t, sidecar, raw, "raw bytes survive for the verbatim copy")

	exposure, raw, err = LoadGroupMetadata(dir, "absent")
	require.NoError(t, err)
	require.Nil(t, raw)
	require.Equal(t, 0.0, exposure)
}

func TestLoadGroupMetadataWithoutExposureIsNeutral(t *testing.T) {
	dir := t.TempDir()
	sidecar := []byte(`{"camera": "cam0"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), sidecar, 0644))

	exposure, raw, err := LoadGroupMetadata(dir, "a")
	require.NoError(t, err)
	require.Equal(t, sidecar, raw)
	require.Equal(t, 1.0, exposure, "no usable exposure must not zero out the display transform")
}
