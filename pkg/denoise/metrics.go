package denoise

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/yesilcimenahmet/oidn/pkg/tensor"
)

var Metrics = []string{"mse", "psnr", "ssim"}

func ValidMetric(metric string) bool {
	for _, m := range Metrics {
		if m == metric {
			return true
		}
	}
	return false
}

// Compare scores the similarity of two display-space tensors of the same
// shape. Higher is better for psnr/ssim, lower for mse.
func Compare(a, b *tensor.Tensor, metric string) (float64, error) {
	switch metric {
	case "mse":
		return mse(a, b), nil
	case "psnr":
		return psnr(a, b), nil
	case "ssim":
		return ssim(a, b), nil
	}
	return 0, fmt.Errorf("no metric named '%s', wanted %v", metric, Metrics)
}

func mse(a, b *tensor.Tensor) float64 {
	sum := 0.0
	for i := range a.Data {
		d := float64(a.Data[i]) - float64(b.Data[i])
		sum += d * d
	}
	return sum / float64(len(a.Data))
}

// psnr assumes display-space values in [0, 1], so the peak is 1.
func psnr(a, b *tensor.Tensor) float64 {
	m := mse(a, b)
	if m == 0 {
		return math.Inf(1)
	}
	return -10.0 * math.Log10(m)
}

// ssim is the structural similarity index over global image statistics
// (single window spanning the whole image), with the usual k1/k2 constants
// and a dynamic range of 1.
func ssim(a, b *tensor.Tensor) float64 {
	const c1 = 0.01 * 0.01
	const c2 = 0.03 * 0.03

	xs := make([]float64, len(a.Data))
	ys := make([]float64, len(b.Data))
	for i := range a.Data {
		xs[i] = float64(a.Data[i])
		ys[i] = float64(b.Data[i])
	}

	muX := stat.Mean(xs, nil)
	muY := stat.Mean(ys, nil)
	varX := stat.Variance(xs, nil)
	varY := stat.Variance(ys, nil)
	cov := stat.Covariance(xs, ys, nil)

	return ((2*muX*muY + c1) * (2*cov + c2)) /
		((muX*muX + muY*muY + c1) * (varX + varY + c2))
}

// An Accumulator keeps the running per-metric sums for one evaluation run.
// The count is shared: it goes up once per processed input, no matter how
// many metrics were scored for that input. Updated only by the (single)
// driver goroutine, in group -> input -> metric order.
type Accumulator struct {
	sums  map[string]float64
	count int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{sums: map[string]float64{}}
}

func (a *Accumulator)Add(metric string, value float64) {
	a.sums[metric] += value
}

// Tick marks one input as processed.
func (a *Accumulator)Tick() { a.count++ }

func (a *Accumulator)Count() int { return a.count }

// Averages reports sum/count per metric; empty when nothing was counted.
func (a *Accumulator)Averages() map[string]float64 {
	avgs := map[string]float64{}
	if a.count == 0 {
		return avgs
	}
	for metric, sum := range a.sums {
		avgs[metric] = sum / float64(a.count)
	}
	return avgs
}
