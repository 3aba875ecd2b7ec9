package denoise

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/yesilcimenahmet/oidn/pkg/tensor"
)

// Minimal Portable FloatMap codec: "PF", dimensions, a negative scale for
// little-endian, then rows of raw float32 RGB, bottom row first. Just enough
// to round-trip linear buffers; everything fancier goes through the real
// codecs.

func writePFM(filename string, t *tensor.Tensor) error {
	writer, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer writer.Close()

	w := bufio.NewWriter(writer)
	fmt.Fprintf(w, "PF\n%d %d\n-1.0\n", t.W, t.H)
	for y := t.H - 1; y >= 0; y-- {
		for x := 0; x < t.W; x++ {
			for c := 0; c < 3; c++ {
				if err := binary.Write(w, binary.LittleEndian, t.At(0, c, y, x)); err != nil {
					return err
				}
			}
		}
	}
	return w.Flush()
}

func readPFM(filename string) (*tensor.Tensor, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	r := bufio.NewReader(reader)
	var magic string
	var width, height int
	var scale float64
	if _, err := fmt.Fscanf(r, "%s\n%d %d\n%f\n", &magic, &width, &height, &scale); err != nil {
		return nil, fmt.Errorf("pfm header: %v", err)
	}
	if magic != "PF" {
		return nil, fmt.Errorf("pfm magic '%s' unhandled", magic)
	}

	order := binary.ByteOrder(binary.LittleEndian)
	if scale > 0 {
		order = binary.BigEndian
	}

	t := tensor.New(1, 3, height, width)
	row := make([]float32, width*3)
	for y := height - 1; y >= 0; y-- {
		if err := binary.Read(r, order, row); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("pfm pixels: %v", err)
		}
		for x := 0; x < width; x++ {
			for c := 0; c < 3; c++ {
				t.Set(0, c, y, x, row[x*3+c])
			}
		}
	}
	return t, nil
}
