package model

import (
	"fmt"

	"github.com/yesilcimenahmet/oidn/pkg/tensor"
)

// A Model is the denoiser itself, treated as a black box. Evaluate consumes a
// NCHW tensor whose channel layout matches the feature set the model was
// trained on, and emits the denoised main-feature channels at the same
// spatial size. Both spatial dimensions fed to Evaluate must be multiples of
// Alignment(); that is the caller's job, not the model's.
type Model interface {
	Evaluate(t *tensor.Tensor) (*tensor.Tensor, error)
	Alignment() int
}

var Kinds = []string{"identity", "filter"}

// New selects a model by its configured kind. `alignment`, when > 0,
// overrides the kind's default alignment.
func New(kind string, alignment int) (Model, error) {
	switch kind {
	case "identity", "":
		if alignment <= 0 {
			alignment = 1
		}
		return identity{alignment: alignment}, nil
	case "filter":
		if alignment <= 0 {
			alignment = 8
		}
		return filter{alignment: alignment}, nil
	}
	return nil, fmt.Errorf("no model named '%s', wanted %v", kind, Kinds)
}

// identity passes the main-feature channels through untouched. Useful as a
// baseline, and as the stand-in when no trained weights are wired up.
type identity struct {
	alignment int
}

func (m identity)Alignment() int { return m.alignment }

func (m identity)Evaluate(t *tensor.Tensor) (*tensor.Tensor, error) {
	c := t.C
	if c > 3 {
		c = 3 // a denoiser emits the main color channels only
	}
	return t.Channels(0, c), nil
}
