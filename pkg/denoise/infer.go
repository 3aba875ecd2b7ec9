package denoise

import (
	"fmt"
	"path/filepath"

	"github.com/yesilcimenahmet/oidn/pkg/model"
	"github.com/yesilcimenahmet/oidn/pkg/tensor"
	"github.com/yesilcimenahmet/oidn/pkg/transfer"
)

// The three SH1 bases: channel offset into the 9-channel prefix, plus the
// filename suffix each basis is written under.
var sh1Bases = []struct {
	Offset int
	Suffix string
}{
	{0, "sh1x"},
	{3, "sh1y"},
	{6, "sh1z"},
}

// An Engine drives one denoising model: it owns the numeric pre/post
// processing around the opaque model call. Exposure handling, alignment
// padding and the SH1 basis decomposition all happen here, so Process hands
// the model exactly what it was trained on and hands the caller back a tensor
// in the caller's coordinate and value space.
type Engine struct {
	Features FeatureSet
	Model    model.Model
	Transfer transfer.Function
	Epoch    int
}

// NewEngine instantiates the model and transfer function a result config
// names, and resolves the requested checkpoint. Configuration problems are
// reported here, before any data is touched.
func NewEngine(resultsDir, result string, epoch int) (*Engine, error) {
	cfg, err := LoadResultConfig(resultsDir, result)
	if err != nil {
		return nil, err
	}

	features, err := NewFeatureSet(cfg.Features)
	if err != nil {
		return nil, fmt.Errorf("result '%s': %v", result, err)
	}

	m, err := model.New(cfg.Model, cfg.Alignment)
	if err != nil {
		return nil, fmt.Errorf("result '%s': %v", result, err)
	}

	tf, err := transfer.New(cfg.Transfer)
	if err != nil {
		return nil, fmt.Errorf("result '%s': %v", result, err)
	}

	_, epoch, err = model.ResolveCheckpoint(filepath.Join(resultsDir, result), epoch)
	if err != nil {
		return nil, err
	}

	return &Engine{Features: features, Model: m, Transfer: tf, Epoch: epoch}, nil
}

// Process denoises one input tensor laid out per the engine's FeatureSet.
// The caller's tensor is never mutated. `exposure` only has an effect when
// the main feature is HDR; pass 1 otherwise.
//
// A channel count that disagrees with the FeatureSet is a caller contract
// violation and is not checked here. Model errors propagate unchanged.
func (e *Engine)Process(input *tensor.Tensor, exposure float64) (*tensor.Tensor, error) {
	x := input.Clone()
	numMain := e.Features.NumMainChannels()
	hdr := e.Features.Main() == FeatureHDR

	// Move the main channels into the transfer function's calibrated domain.
	// For HDR the exposure scaling happens first, so the transform sees the
	// normalized range it expects.
	if e.Transfer != nil {
		color := x.Channels(0, numMain)
		if hdr {
			color.Scale(float32(exposure))
		}
		color.Apply(e.Transfer.Forward)
		x.SetChannels(0, color)
	}

	// Pad bottom/right up to the model's alignment; the origin stays fixed so
	// the crop below is a plain prefix slice.
	h, w := x.H, x.W
	x = x.Pad(e.Model.Alignment())

	// The model itself runs in inference-only mode; restore on every path.
	release := model.BeginInference()
	defer release()

	var y *tensor.Tensor
	var err error
	if e.Features.Main() == FeatureSH1 {
		// Denoise each 3-channel basis independently, each alongside the
		// shared auxiliary channels, then reassemble in x, y, z order.
		outs := make([]*tensor.Tensor, 0, len(sh1Bases))
		for _, basis := range sh1Bases {
			in := tensor.ConcatChannels(x.Channels(basis.Offset, basis.Offset+3), x.Channels(9, x.C))
			out, err := e.Model.Evaluate(in)
			if err != nil {
				return nil, err
			}
			outs = append(outs, out)
		}
		y = tensor.ConcatChannels(outs...)
	} else {
		y, err = e.Model.Evaluate(x)
		if err != nil {
			return nil, err
		}
	}

	// Undo the padding, then remove reconstruction undershoot.
	y = y.Crop(h, w)
	y.ClampMin(0)

	// Back out of the transfer domain. HDR undoes the exposure scaling
	// exactly; everything else is bounded by the LDR ceiling.
	if e.Transfer != nil {
		y.Apply(e.Transfer.Inverse)
		if hdr {
			y.Scale(float32(1.0 / exposure))
		} else {
			y.ClampMax(1)
		}
	}

	return y, nil
}
