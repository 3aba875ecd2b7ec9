package denoise

import (
	"math"
	"os"
	"path/filepath"

	"github.com/rwcarlsen/goexif/exif"
)

// Fallback for groups with no metadata sidecar: when the reference image is
// a TIFF straight off a camera, its EXIF exposure settings give us a usable
// tonemap exposure. EV = log2(N^2/t) adjusted for ISO; the gain is anchored
// so a sunny-16 exposure (EV 15) maps to 1.
const exifAnchorEV = 15.0

// ExifExposure derives a display exposure gain from a sample's TIFF EXIF
// tags. Returns (1, false) when there is nothing usable.
func ExifExposure(dataDir, sample string, features FeatureSet) (float64, bool) {
	filename := filepath.Join(dataDir, filepath.FromSlash(sample)) + "." + string(features.Main()) + ".tif"
	reader, err := os.Open(filename)
	if err != nil {
		return 1, false
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return 1, false
	}

	fnum, err := ex.Get(exif.FNumber)
	if err != nil {
		return 1, false
	}
	fNum, fDen, err := fnum.Rat2(0)
	if err != nil || fDen == 0 {
		return 1, false
	}

	shutter, err := ex.Get(exif.ExposureTime)
	if err != nil {
		return 1, false
	}
	sNum, sDen, err := shutter.Rat2(0)
	if err != nil || sNum == 0 {
		return 1, false
	}

	iso := 100
	if tag, err := ex.Get(exif.ISOSpeedRatings); err == nil {
		if v, err := tag.Int(0); err == nil && v > 0 {
			iso = v
		}
	}

	aperture := float64(fNum) / float64(fDen)
	exposureTime := float64(sNum) / float64(sDen)
	ev := math.Log2(aperture*aperture/exposureTime) - math.Log2(float64(iso)/100.0)

	return math.Exp2(exifAnchorEV - ev), true
}
