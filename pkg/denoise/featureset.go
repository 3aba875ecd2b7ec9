package denoise

import (
	"fmt"
)

// A Feature names one buffer produced by the renderer.
type Feature string

const (
	FeatureHDR    Feature = "hdr" // HDR radiance
	FeatureLDR    Feature = "ldr" // tone-mapped color
	FeatureAlbedo Feature = "alb"
	FeatureNormal Feature = "nrm"
	FeatureSH1    Feature = "sh1" // order-1 spherical harmonics irradiance
)

// Channels is how many channels the feature occupies in the tensor layout.
// SH1 is three orthogonal 3-channel bases (x, y, z).
func (f Feature)Channels() int {
	if f == FeatureSH1 {
		return 9
	}
	return 3
}

// Signed reports whether the feature's natural range is [-1, 1]; such
// features are stored in tensors remapped to [0, 1].
func (f Feature)Signed() bool {
	return f == FeatureNormal || f == FeatureSH1
}

func (f Feature)valid() bool {
	switch f {
	case FeatureHDR, FeatureLDR, FeatureAlbedo, FeatureNormal, FeatureSH1:
		return true
	}
	return false
}

// A FeatureSet is the ordered channel layout of one sample. The first entry
// is the main feature (the buffer being denoised); its channels occupy the
// prefix of the channel axis, auxiliary features follow.
type FeatureSet struct {
	Features []Feature
}

func NewFeatureSet(names []string) (FeatureSet, error) {
	if len(names) == 0 {
		return FeatureSet{}, fmt.Errorf("empty feature list")
	}
	fs := FeatureSet{}
	for _, name := range names {
		f := Feature(name)
		if !f.valid() {
			return FeatureSet{}, fmt.Errorf("unknown feature '%s'", name)
		}
		fs.Features = append(fs.Features, f)
	}
	return fs, nil
}

func (fs FeatureSet)Main() Feature { return fs.Features[0] }

func (fs FeatureSet)NumMainChannels() int { return fs.Main().Channels() }

func (fs FeatureSet)NumChannels() int {
	n := 0
	for _, f := range fs.Features {
		n += f.Channels()
	}
	return n
}

func (fs FeatureSet)String() string {
	return fmt.Sprintf("%v", fs.Features)
}
