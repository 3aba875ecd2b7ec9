package model

import (
	"math"

	"github.com/yesilcimenahmet/oidn/pkg/tensor"
)

// filter is a self-contained denoiser: an edge-preserving 3x3 bilateral
// smoothing over the main color channels. It exists so the whole pipeline
// runs end to end without trained weights; a real checkpointed model slots in
// behind the same contract.
type filter struct {
	alignment int
}

const (
	filterSigmaRange = 0.1
	filterPasses     = 2
)

func (m filter)Alignment() int { return m.alignment }

func (m filter)Evaluate(t *tensor.Tensor) (*tensor.Tensor, error) {
	c := t.C
	if c > 3 {
		c = 3
	}
	out := t.Channels(0, c)
	for pass := 0; pass < filterPasses; pass++ {
		out = bilateral3x3(out)
	}
	return out, nil
}

func bilateral3x3(t *tensor.Tensor) *tensor.Tensor {
	out := tensor.New(t.N, t.C, t.H, t.W)
	inv2s2 := 1.0 / (2.0 * filterSigmaRange * filterSigmaRange)

	for n := 0; n < t.N; n++ {
		for c := 0; c < t.C; c++ {
			for y := 0; y < t.H; y++ {
				for x := 0; x < t.W; x++ {
					center := float64(t.At(n, c, y, x))
					sum, wsum := 0.0, 0.0
					for dy := -1; dy <= 1; dy++ {
						for dx := -1; dx <= 1; dx++ {
							yy, xx := y+dy, x+dx
							if yy < 0 || yy >= t.H || xx < 0 || xx >= t.W {
								continue
							}
							v := float64(t.At(n, c, yy, xx))
							d := v - center
							w := math.Exp(-d * d * inv2s2)
							sum += v * w
							wsum += w
						}
					}
					out.Set(n, c, y, x, float32(sum/wsum))
				}
			}
		}
	}
	return out
}
