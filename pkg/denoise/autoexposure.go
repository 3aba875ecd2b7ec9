package denoise

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/yesilcimenahmet/oidn/pkg/tensor"
)

// Autoexposure keeps the transfer function's input range stable across
// wildly different HDR scenes: the gain maps the scene's log-average
// luminance onto middle gray.
const (
	autoexpKey     = 0.18
	autoexpEps     = 1e-8
	autoexpBinSize = 16 // downsample factor, to shrug off per-pixel noise
)

func luminance(r, g, b float64) float64 {
	// Rec. 709
	return 0.212671*r + 0.715160*g + 0.072169*b
}

// AutoExposure computes the scalar gain for an input tensor. Only HDR main
// features get a derived gain; everything else is 1. Deterministic for a
// given input.
func AutoExposure(t *tensor.Tensor, features FeatureSet) float64 {
	if features.Main() != FeatureHDR {
		return 1
	}

	// Average the main channels down into coarse bins, then take the
	// log2-mean luminance of the non-dark bins.
	binsY := t.H / autoexpBinSize
	binsX := t.W / autoexpBinSize
	if binsY == 0 || binsX == 0 {
		binsY, binsX = 1, 1
	}

	logLum := []float64{}
	for by := 0; by < binsY; by++ {
		for bx := 0; bx < binsX; bx++ {
			y0 := by * t.H / binsY
			y1 := (by + 1) * t.H / binsY
			x0 := bx * t.W / binsX
			x1 := (bx + 1) * t.W / binsX

			var sum [3]float64
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					for c := 0; c < 3; c++ {
						sum[c] += float64(t.At(0, c, y, x))
					}
				}
			}
			n := float64((y1 - y0) * (x1 - x0))
			if lum := luminance(sum[0]/n, sum[1]/n, sum[2]/n); lum > autoexpEps {
				logLum = append(logLum, math.Log2(lum))
			}
		}
	}

	if len(logLum) == 0 {
		return 1
	}
	return autoexpKey / math.Exp2(stat.Mean(logLum, nil))
}
