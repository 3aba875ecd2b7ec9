package denoise

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"golang.org/x/image/tiff"

	"github.com/yesilcimenahmet/oidn/pkg/tensor"
)

// On-disk layout: a dataset directory of <base>_<tag>.<feature>.<ext> files,
// optionally nested in subdirectories. Samples sharing <base> form one
// ImageSampleGroup: the "ref" tag is the ground-truth target, every other tag
// is an input variant (typically the sample count, e.g. 0016spp). SH1 main
// features span three files tagged by basis suffix (sh1x/sh1y/sh1z). An
// optional <base>.json sidecar carries the group metadata.

var imageExts = []string{".png", ".tif", ".hdr", ".pfm"}

const targetTag = "ref"

// An ImageSampleGroup is one scene view: its input variants, and the
// optional target they are all compared against. Names are sample base names
// relative to the dataset dir, without feature/extension suffixes.
type ImageSampleGroup struct {
	Name   string // e.g. "cornell/view2"
	Inputs []string
	Target string // "" when there is no reference
}

// DiscoverGroups scans a dataset directory for samples carrying the feature
// set's main feature, and assembles them into ordered groups.
func DiscoverGroups(dataDir string, features FeatureSet) ([]ImageSampleGroup, error) {
	mainSuffix := string(features.Main())
	if features.Main() == FeatureSH1 {
		mainSuffix = sh1Bases[0].Suffix // one basis file is enough to identify a sample
	}

	samples := map[string][]string{} // group name -> sample names
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		name, ok := sampleName(path, mainSuffix)
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(dataDir, name)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		samples[groupName(rel)] = append(samples[groupName(rel)], rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %v", dataDir, err)
	}

	groups := []ImageSampleGroup{}
	for name, members := range samples {
		sort.Strings(members)
		g := ImageSampleGroup{Name: name}
		for _, m := range members {
			if strings.HasSuffix(m, "_"+targetTag) {
				g.Target = m
			} else {
				g.Inputs = append(g.Inputs, m)
			}
		}
		if len(g.Inputs) > 0 {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

// sampleName strips the ".<suffix>.<ext>" tail, if this is such a file.
func sampleName(path, suffix string) (string, bool) {
	ext := filepath.Ext(path)
	ok := false
	for _, e := range imageExts {
		if ext == e {
			ok = true
		}
	}
	if !ok {
		return "", false
	}
	base := strings.TrimSuffix(path, ext)
	if filepath.Ext(base) != "."+suffix {
		return "", false
	}
	return strings.TrimSuffix(base, "."+suffix), true
}

// groupName strips the trailing _<tag> from a sample name.
func groupName(sample string) string {
	if i := strings.LastIndex(sample, "_"); i > 0 {
		return sample[:i]
	}
	return sample
}

// LoadFeatures loads a sample's feature buffers into one NCHW tensor, in
// FeatureSet order. Signed features stored in extended-range files get
// remapped from [-1, 1] to the pipeline's [0, 1] encoding.
func LoadFeatures(dataDir, sample string, features FeatureSet) (*tensor.Tensor, error) {
	parts := make([]*tensor.Tensor, 0, len(features.Features))
	for _, f := range features.Features {
		t, err := loadFeature(dataDir, sample, f)
		if err != nil {
			return nil, err
		}
		parts = append(parts, t)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return tensor.ConcatChannels(parts...), nil
}

func loadFeature(dataDir, sample string, f Feature) (*tensor.Tensor, error) {
	if f == FeatureSH1 {
		bases := make([]*tensor.Tensor, 0, len(sh1Bases))
		for _, basis := range sh1Bases {
			t, err := loadFeatureFile(dataDir, sample, basis.Suffix, f)
			if err != nil {
				return nil, err
			}
			bases = append(bases, t)
		}
		return tensor.ConcatChannels(bases...), nil
	}
	return loadFeatureFile(dataDir, sample, string(f), f)
}

func loadFeatureFile(dataDir, sample, suffix string, f Feature) (*tensor.Tensor, error) {
	prefix := filepath.Join(dataDir, filepath.FromSlash(sample)) + "." + suffix
	for _, ext := range imageExts {
		filename := prefix + ext
		if _, err := os.Stat(filename); err != nil {
			continue
		}
		t, err := loadImage(filename)
		if err != nil {
			return nil, err
		}
		if f.Signed() && extendedFormats[ext[1:]] {
			// [-1, 1] on disk -> [0, 1] in the pipeline
			t.Apply(func(v float64) float64 { return (v + 1.0) / 2.0 })
		}
		return t, nil
	}
	return nil, fmt.Errorf("no %s image for sample '%s' in %s", suffix, sample, dataDir)
}

func loadImage(filename string) (*tensor.Tensor, error) {
	switch filepath.Ext(filename) {
	case ".pfm":
		return readPFM(filename)
	case ".hdr":
		reader, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		img, err := rgbe.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("decode '%s': %v", filename, err)
		}
		if hdrImg, ok := img.(hdr.Image); ok {
			return hdrToTensor(hdrImg), nil
		}
		return ldrToTensor(img), nil
	}

	reader, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var img image.Image
	if filepath.Ext(filename) == ".tif" {
		img, err = tiff.Decode(reader)
	} else {
		img, err = png.Decode(reader)
	}
	if err != nil {
		return nil, fmt.Errorf("decode '%s': %v", filename, err)
	}
	return ldrToTensor(img), nil
}

func hdrToTensor(img hdr.Image) *tensor.Tensor {
	b := img.Bounds()
	t := tensor.New(1, 3, b.Dy(), b.Dx())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.HDRAt(b.Min.X+x, b.Min.Y+y).HDRRGBA()
			t.Set(0, 0, y, x, float32(r))
			t.Set(0, 1, y, x, float32(g))
			t.Set(0, 2, y, x, float32(bl))
		}
	}
	return t
}

func ldrToTensor(img image.Image) *tensor.Tensor {
	b := img.Bounds()
	t := tensor.New(1, 3, b.Dy(), b.Dx())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			t.Set(0, 0, y, x, float32(r)/65535.0)
			t.Set(0, 1, y, x, float32(g)/65535.0)
			t.Set(0, 2, y, x, float32(bl)/65535.0)
		}
	}
	return t
}

// Group metadata sidecar. Only the exposure is interpreted; the rest rides
// along and is copied to the output verbatim.
type metadata struct {
	Exposure float64 `json:"exposure"`
}

// LoadGroupMetadata reads <group>.json if present. The raw bytes come back
// too, for the verbatim copy to the output location.
func LoadGroupMetadata(dataDir, group string) (float64, []byte, error) {
	filename := filepath.Join(dataDir, filepath.FromSlash(group)) + ".json"
	contents, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return 0, nil, nil
	} else if err != nil {
		return 0, nil, fmt.Errorf("metadata read '%s': %v", filename, err)
	}

	md := metadata{}
	if err := json.Unmarshal(contents, &md); err != nil {
		return 0, nil, fmt.Errorf("metadata parse '%s': %v", filename, err)
	}
	if md.Exposure <= 0 {
		// A sidecar without a usable exposure still rides along verbatim,
		// but the display transforms get the neutral gain.
		md.Exposure = 1
	}
	return md.Exposure, contents, nil
}
