package transfer

import (
	"fmt"
	"math"
)

// A Function maps linear radiometric values into a normalized domain the
// denoising model was trained in, and back. Forward and Inverse are mutually
// inverse over the domain the function is calibrated for; both operate
// element-wise over color-like channels.
type Function interface {
	Forward(y float64) float64
	Inverse(x float64) float64
	Name() string
}

var Kinds = []string{"pu", "log", "srgb", "linear", "none"}

// New selects a transfer function by its configured kind. The "none" kind
// (or an empty string) returns nil: the pipeline then skips the transfer
// stage entirely.
func New(kind string) (Function, error) {
	switch kind {
	case "pu":
		return newPU(), nil
	case "log":
		return logFn{}, nil
	case "srgb":
		return srgbFn{}, nil
	case "linear":
		return linearFn{}, nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("no transfer function named '%s', wanted %v", kind, Kinds)
}

// Largest radiance value the HDR functions are calibrated for (the largest
// finite half-float).
const hdrYMax = 65504.0

// ---------------------------------------------------------------------------

// The PU function: a fit of the perceptually uniform encoding of luminance,
// piecewise over three ranges (linear toe, power mid, log shoulder), scaled
// so that forward(hdrYMax) == 1.
type puFn struct {
	scale float64
}

const (
	puA  = 1.41283765e+03
	puB  = 1.64593172e+00
	puC  = 4.31384981e-01
	puD  = -2.94139609e-03
	puE  = 1.92653254e-01
	puF  = 6.26026094e-03
	puG  = 9.98620152e-01
	puY0 = 1.57945760e-06
	puY1 = 3.22087631e-02
	puX0 = 2.23151711e-03
	puX1 = 3.70974749e-01
)

func newPU() puFn {
	return puFn{scale: 1.0 / puForward(hdrYMax)}
}

func puForward(y float64) float64 {
	switch {
	case y <= puY0:
		return puA * y
	case y <= puY1:
		return puB*math.Pow(y, puC) + puD
	default:
		return puE*math.Log(y+puF) + puG
	}
}

func puInverse(x float64) float64 {
	switch {
	case x <= puX0:
		return x / puA
	case x <= puX1:
		return math.Pow((x-puD)/puB, 1.0/puC)
	default:
		return math.Exp((x-puG)/puE) - puF
	}
}

func (f puFn)Forward(y float64) float64 { return puForward(y) * f.scale }
func (f puFn)Inverse(x float64) float64 { return puInverse(x / f.scale) }
func (f puFn)Name() string              { return "pu" }

// ---------------------------------------------------------------------------

// Log encoding, scaled so that forward(hdrYMax) == 1.
type logFn struct{}

var logScale = 1.0 / math.Log(hdrYMax+1.0)

func (logFn)Forward(y float64) float64 { return math.Log(y+1.0) * logScale }
func (logFn)Inverse(x float64) float64 { return math.Exp(x/logScale) - 1.0 }
func (logFn)Name() string              { return "log" }

// ---------------------------------------------------------------------------

// The sRGB gamma curve. Only meaningful for LDR values in [0, 1].
type srgbFn struct{}

func (srgbFn)Forward(y float64) float64 {
	if y <= 0.0031308 {
		return 12.92 * y
	}
	return 1.055*math.Pow(y, 1.0/2.4) - 0.055
}

func (srgbFn)Inverse(x float64) float64 {
	if x <= 0.04045 {
		return x / 12.92
	}
	return math.Pow((x+0.055)/1.055, 2.4)
}

func (srgbFn)Name() string { return "srgb" }

// ---------------------------------------------------------------------------

type linearFn struct{}

func (linearFn)Forward(y float64) float64 { return y }
func (linearFn)Inverse(x float64) float64 { return x }
func (linearFn)Name() string              { return "linear" }
