package tensor

import (
	"fmt"
)

// A Tensor is a dense NCHW float32 array. The spatial dimensions only ever
// change through Pad/Crop, which are exact inverses of each other; everything
// else preserves shape. Ops that return a *Tensor allocate a fresh one, so a
// caller's buffer is never touched behind its back. In-place ops (Scale,
// ClampMin, ClampMax, Apply) are for tensors the caller owns outright.
type Tensor struct {
	N, C, H, W int
	Data       []float32
}

func New(n, c, h, w int) *Tensor {
	return &Tensor{
		N: n, C: c, H: h, W: w,
		Data: make([]float32, n*c*h*w),
	}
}

func (t *Tensor)String() string {
	return fmt.Sprintf("tensor[%dx%dx%dx%d]", t.N, t.C, t.H, t.W)
}

func (t *Tensor)index(n, c, y, x int) int {
	return ((n*t.C+c)*t.H+y)*t.W + x
}

func (t *Tensor)At(n, c, y, x int) float32     { return t.Data[t.index(n, c, y, x)] }
func (t *Tensor)Set(n, c, y, x int, v float32) { t.Data[t.index(n, c, y, x)] = v }

func (t *Tensor)Clone() *Tensor {
	t2 := New(t.N, t.C, t.H, t.W)
	copy(t2.Data, t.Data)
	return t2
}

// Channels copies out the channel range [lo, hi).
func (t *Tensor)Channels(lo, hi int) *Tensor {
	t2 := New(t.N, hi-lo, t.H, t.W)
	plane := t.H * t.W
	for n := 0; n < t.N; n++ {
		for c := lo; c < hi; c++ {
			src := t.index(n, c, 0, 0)
			dst := t2.index(n, c-lo, 0, 0)
			copy(t2.Data[dst:dst+plane], t.Data[src:src+plane])
		}
	}
	return t2
}

// SetChannels writes src back over the channel range starting at lo. The
// spatial dimensions of src must match t.
func (t *Tensor)SetChannels(lo int, src *Tensor) {
	plane := t.H * t.W
	for n := 0; n < t.N; n++ {
		for c := 0; c < src.C; c++ {
			dst := t.index(n, lo+c, 0, 0)
			s := src.index(n, c, 0, 0)
			copy(t.Data[dst:dst+plane], src.Data[s:s+plane])
		}
	}
}

// ConcatChannels concatenates along the channel axis, in argument order.
func ConcatChannels(ts ...*Tensor) *Tensor {
	channels := 0
	for _, t := range ts {
		channels += t.C
	}
	out := New(ts[0].N, channels, ts[0].H, ts[0].W)
	at := 0
	for _, t := range ts {
		out.SetChannels(at, t)
		at += t.C
	}
	return out
}

func RoundUp(n, multiple int) int {
	return ((n + multiple - 1) / multiple) * multiple
}

// Pad zero-pads the bottom/right edges up to the next multiple of `alignment`,
// leaving the origin fixed so the later Crop is a plain prefix slice. Padding
// an already aligned tensor returns an identical copy.
func (t *Tensor)Pad(alignment int) *Tensor {
	h := RoundUp(t.H, alignment)
	w := RoundUp(t.W, alignment)
	t2 := New(t.N, t.C, h, w)
	for n := 0; n < t.N; n++ {
		for c := 0; c < t.C; c++ {
			for y := 0; y < t.H; y++ {
				src := t.index(n, c, y, 0)
				dst := t2.index(n, c, y, 0)
				copy(t2.Data[dst:dst+t.W], t.Data[src:src+t.W])
			}
		}
	}
	return t2
}

// Crop takes the [0:h, 0:w] prefix of the spatial dimensions, the exact
// inverse of Pad.
func (t *Tensor)Crop(h, w int) *Tensor {
	t2 := New(t.N, t.C, h, w)
	for n := 0; n < t.N; n++ {
		for c := 0; c < t.C; c++ {
			for y := 0; y < h; y++ {
				src := t.index(n, c, y, 0)
				dst := t2.index(n, c, y, 0)
				copy(t2.Data[dst:dst+w], t.Data[src:src+w])
			}
		}
	}
	return t2
}

func (t *Tensor)Scale(s float32) {
	for i := range t.Data {
		t.Data[i] *= s
	}
}

func (t *Tensor)ClampMin(min float32) {
	for i := range t.Data {
		if t.Data[i] < min {
			t.Data[i] = min
		}
	}
}

func (t *Tensor)ClampMax(max float32) {
	for i := range t.Data {
		if t.Data[i] > max {
			t.Data[i] = max
		}
	}
}

// Apply runs f over every element in place.
func (t *Tensor)Apply(f func(float64) float64) {
	for i := range t.Data {
		t.Data[i] = float32(f(float64(t.Data[i])))
	}
}
