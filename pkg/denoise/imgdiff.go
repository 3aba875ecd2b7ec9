package denoise

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/yesilcimenahmet/oidn/pkg/tensor"
)

// DumpDiff writes an annotated grayscale image of |a - b| over the first
// three channels, gamma scaled so the structure is visible to human vision.
// Only used in verbose runs, to eyeball where an output diverges from its
// target.
func DumpDiff(filename, title string, a, b *tensor.Tensor) error {
	diff := make([]float64, a.H*a.W)
	max := 0.0
	for y := 0; y < a.H; y++ {
		for x := 0; x < a.W; x++ {
			d := 0.0
			for c := 0; c < 3 && c < a.C; c++ {
				d += math.Abs(float64(a.At(0, c, y, x)) - float64(b.At(0, c, y, x)))
			}
			diff[y*a.W+x] = d
			if d > max {
				max = d
			}
		}
	}
	if max == 0 {
		max = 1
	}

	img := image.NewRGBA64(image.Rectangle{Max: image.Point{a.W, a.H}})
	for y := 0; y < a.H; y++ {
		for x := 0; x < a.W; x++ {
			gray := gammaExpand(diff[y*a.W+x] / max)
			v := uint16(gray * 65535.0)
			img.Set(x, y, color.RGBA64{v, v, v, 0xFFFF})
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(title, 10, 15)
	return dc.SavePNG(filename)
}

// linear RGB to sRGB, per channel
func gammaExpand(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055*math.Pow(f, 1.0/2.4) - 0.055
}
