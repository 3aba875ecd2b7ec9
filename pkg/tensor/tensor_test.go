package tensor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sequential(n, c, h, w int) *Tensor {
	t := New(n, c, h, w)
	for i := range t.Data {
		t.Data[i] = float32(i)
	}
	return t
}

func TestRoundUp(t *testing.T) {
	require.Equal(t, 16, RoundUp(13, 8))
	require.Equal(t, 16, RoundUp(16, 8))
	require.Equal(t, 8, RoundUp(1, 8))
	require.Equal(t, 5, RoundUp(5, 1))
}

func TestCloneIsIndependent(t *testing.T) {
	a := sequential(1, 2, 3, 3)
	b := a.Clone()
	b.Data[0] = 99

	require.Equal(t, float32(0), a.Data[0])
	require.Equal(t, a.N, b.N)
	require.Equal(t, a.C, b.C)
}

func TestPadThenCropRoundTrips(t *testing.T) {
	testCases := []struct {
		alignment, h, w int
	}{
		{8, 13, 17},
		{8, 16, 16}, // already aligned: pad is a no-op
		{16, 1, 1},
		{1, 5, 7}, // alignment 1 never pads
		{4, 8, 7},
	}

	for _, tc := range testCases {
		orig := sequential(1, 3, tc.h, tc.w)
		padded := orig.Pad(tc.alignment)

		require.Equal(t, 0, padded.H%tc.alignment, "h=%d a=%d", tc.h, tc.alignment)
		require.Equal(t, 0, padded.W%tc.alignment, "w=%d a=%d", tc.w, tc.alignment)

		cropped := padded.Crop(tc.h, tc.w)
		if diff := cmp.Diff(orig, cropped); diff != "" {
			t.Errorf("pad/crop round trip a=%d h=%d w=%d (-want +got):\n%s", tc.alignment, tc.h, tc.w, diff)
		}
	}
}

func TestPadAlignedIsIdentical(t *testing.T) {
	orig := sequential(1, 2, 16, 8)
	padded := orig.Pad(8)
	if diff := cmp.Diff(orig, padded); diff != "" {
		t.Errorf("padding an aligned tensor changed it (-want +got):\n%s", diff)
	}
}

func TestPadFillsTrailingEdgeWithZeros(t *testing.T) {
	orig := New(1, 1, 2, 2)
	for i := range orig.Data {
		orig.Data[i] = 1
	}
	padded := orig.Pad(4)

	require.Equal(t, 4, padded.H)
	require.Equal(t, 4, padded.W)
	require.Equal(t, float32(1), padded.At(0, 0, 1, 1)) // origin stays fixed
	require.Equal(t, float32(0), padded.At(0, 0, 2, 2))
	require.Equal(t, float32(0), padded.At(0, 0, 0, 3))
}

func TestChannelsAndConcat(t *testing.T) {
	orig := sequential(1, 9, 2, 2)

	x := orig.Channels(0, 3)
	y := orig.Channels(3, 6)
	z := orig.Channels(6, 9)
	require.Equal(t, 3, x.C)
	require.Equal(t, orig.At(0, 3, 1, 1), y.At(0, 0, 1, 1))

	back := ConcatChannels(x, y, z)
	if diff := cmp.Diff(orig, back); diff != "" {
		t.Errorf("split/concat round trip (-want +got):\n%s", diff)
	}
}

func TestSetChannelsWritesBackInPlace(t *testing.T) {
	orig := sequential(1, 4, 2, 2)
	slice := orig.Channels(0, 2)
	slice.Scale(10)
	orig.SetChannels(0, slice)

	require.Equal(t, float32(10), orig.At(0, 0, 0, 1))
	require.Equal(t, float32(12), orig.At(0, 3, 0, 0)) // channels past the slice untouched
}

func TestClamp(t *testing.T) {
	a := New(1, 1, 1, 3)
	a.Data = []float32{-0.5, 0.5, 1.5}

	a.ClampMin(0)
	require.Equal(t, []float32{0, 0.5, 1.5}, a.Data)

	a.ClampMax(1)
	require.Equal(t, []float32{0, 0.5, 1}, a.Data)
}

func TestApply(t *testing.T) {
	a := New(1, 1, 1, 2)
	a.Data = []float32{1, 2}
	a.Apply(func(v float64) float64 { return v * v })
	require.Equal(t, []float32{1, 4}, a.Data)
}
