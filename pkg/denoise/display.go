package denoise

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/yesilcimenahmet/oidn/pkg/tensor"
)

// The display color space is what metrics compare in and what LDR exports
// contain: HDR radiance gets exposed, filmically tone mapped and sRGB
// encoded; LDR color and albedo just get sRGB encoded; normals and SH1 are
// already stored in a displayable [0, 1] range.

// Hable's filmic curve, normalized to a linear white of 11.2.
func filmic(x float64) float64 {
	const a, b, c, d, e, f = 0.22, 0.30, 0.10, 0.20, 0.01, 0.30
	const white = 11.2
	curve := func(v float64) float64 {
		return (v*(a*v+c*b)+d*e)/(v*(a*v+b)+d*f) - e/f
	}
	return curve(2.0*x) / curve(white)
}

// ToDisplay maps a tensor of `kind` channels into display space. `exposure`
// is the group's tonemap exposure, only meaningful for HDR. The input is not
// mutated.
func ToDisplay(t *tensor.Tensor, kind Feature, exposure float64) *tensor.Tensor {
	switch kind {
	case FeatureHDR:
		out := t.Clone()
		for n := 0; n < out.N; n++ {
			for y := 0; y < out.H; y++ {
				for x := 0; x < out.W; x++ {
					r := filmic(float64(out.At(n, 0, y, x)) * exposure)
					g := filmic(float64(out.At(n, 1, y, x)) * exposure)
					b := filmic(float64(out.At(n, 2, y, x)) * exposure)
					col := colorful.LinearRgb(r, g, b).Clamped()
					out.Set(n, 0, y, x, float32(col.R))
					out.Set(n, 1, y, x, float32(col.G))
					out.Set(n, 2, y, x, float32(col.B))
				}
			}
		}
		return out

	case FeatureLDR, FeatureAlbedo:
		out := t.Clone()
		for n := 0; n < out.N; n++ {
			for y := 0; y < out.H; y++ {
				for x := 0; x < out.W; x++ {
					r := float64(out.At(n, 0, y, x))
					g := float64(out.At(n, 1, y, x))
					b := float64(out.At(n, 2, y, x))
					col := colorful.LinearRgb(r, g, b).Clamped()
					out.Set(n, 0, y, x, float32(col.R))
					out.Set(n, 1, y, x, float32(col.G))
					out.Set(n, 2, y, x, float32(col.B))
				}
			}
		}
		return out

	default: // nrm, sh1
		return t.Clone()
	}
}
