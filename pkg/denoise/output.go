package denoise

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"golang.org/x/image/tiff"

	"github.com/yesilcimenahmet/oidn/pkg/tensor"
)

// Output formats. Extended-range formats hold linear values outside [0, 1]
// and get the linear tensor; the rest get the clamped display tensor.
var (
	Formats         = []string{"png", "tif", "hdr", "pfm"}
	extendedFormats = map[string]bool{"hdr": true, "pfm": true}
)

func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// A Composer maps a processed tensor onto the requested on-disk formats.
type Composer struct {
	Kind    Feature // the main feature being written
	Formats []string
}

// Write saves `linear` (original value range) and `display` (display color
// space) under basePath, one file per requested format, named
// <basePath>.<suffix>.<format>. SH1 tensors are written as three 3-channel
// images, one per basis, in x, y, z order.
func (cp Composer)Write(basePath string, linear, display *tensor.Tensor) error {
	if cp.Kind == FeatureSH1 {
		for _, basis := range sh1Bases {
			err := cp.writeOne(basePath, basis.Suffix,
				linear.Channels(basis.Offset, basis.Offset+3),
				display.Channels(basis.Offset, basis.Offset+3))
			if err != nil {
				return err
			}
		}
		return nil
	}
	return cp.writeOne(basePath, string(cp.Kind), linear, display)
}

func (cp Composer)writeOne(basePath, suffix string, linear, display *tensor.Tensor) error {
	for _, format := range cp.Formats {
		filename := basePath + "." + suffix + "." + format

		var err error
		if extendedFormats[format] {
			t := linear
			if cp.Kind.Signed() {
				// Back to the feature's natural [-1, 1] range
				t = t.Clone()
				t.Apply(func(v float64) float64 { return v*2.0 - 1.0 })
			}
			switch format {
			case "hdr":
				err = writeRGBE(filename, t)
			case "pfm":
				err = writePFM(filename, t)
			}
		} else {
			t := display.Clone()
			t.ClampMin(0)
			t.ClampMax(1)
			switch format {
			case "png":
				err = writePNG(filename, toImage(t))
			case "tif":
				err = writeTIFF(filename, toImage(t))
			}
		}
		if err != nil {
			return fmt.Errorf("save '%s': %v", filename, err)
		}
	}
	return nil
}

// toImage converts the first batch entry of a [0,1] 3-channel tensor into a
// 16-bit image.
func toImage(t *tensor.Tensor) image.Image {
	img := image.NewRGBA64(image.Rectangle{Max: image.Point{t.W, t.H}})
	for y := 0; y < t.H; y++ {
		for x := 0; x < t.W; x++ {
			img.Set(x, y, color.RGBA64{
				uint16(t.At(0, 0, y, x) * 65535.0),
				uint16(t.At(0, 1, y, x) * 65535.0),
				uint16(t.At(0, 2, y, x) * 65535.0),
				0xFFFF,
			})
		}
	}
	return img
}

// tensorImage adapts a 3-channel tensor to hdr.Image for the RGBE codec.
type tensorImage struct {
	t *tensor.Tensor
}

func (ti tensorImage)ColorModel() color.Model { return hdrcolor.RGBModel }
func (ti tensorImage)Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{ti.t.W, ti.t.H}}
}
func (ti tensorImage)At(x, y int) color.Color { return ti.HDRAt(x, y) }
func (ti tensorImage)Size() int               { return ti.t.W * ti.t.H }
func (ti tensorImage)HDRAt(x, y int) hdrcolor.Color {
	return hdrcolor.RGB{
		R: float64(ti.t.At(0, 0, y, x)),
		G: float64(ti.t.At(0, 1, y, x)),
		B: float64(ti.t.At(0, 2, y, x)),
	}
}

func writeRGBE(filename string, t *tensor.Tensor) error {
	writer, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer writer.Close()
	return rgbe.Encode(writer, tensorImage{t})
}

func writePNG(filename string, img image.Image) error {
	writer, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer writer.Close()
	return png.Encode(writer, img)
}

func writeTIFF(filename string, img image.Image) error {
	writer, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer writer.Close()
	return tiff.Encode(writer, img, nil)
}
