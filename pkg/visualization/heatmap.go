package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"github.com/ajroetker/go-highway/hwy"
)

// Heatmap renders a dense score array as a grayscale landscape with one
// cell per orientation and translation pair. Both metrics are oriented
// so that lower is better, so the minimum renders brightest.
type Heatmap[T hwy.Floats] struct {
	// scores holds the landscape laid out as [iorient*nTrans+itrans]
	scores []T

	// nOrient and nTrans are the search grid dimensions
	nOrient int
	nTrans  int
}

// NewHeatmap creates a heatmap over a dense score array.
func NewHeatmap[T hwy.Floats](scores []T, nOrient, nTrans int) *Heatmap[T] {
	return &Heatmap[T]{
		scores:  scores,
		nOrient: nOrient,
		nTrans:  nTrans,
	}
}

// Render draws the landscape as a grayscale image with translations
// along x and orientations along y, each pair covering a cell x cell
// pixel block.
func (h *Heatmap[T]) Render(cell int) (image.Image, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	if cell < 1 {
		cell = 1
	}

	lo, hi := h.rangeOf()
	img := image.NewGray16(image.Rect(0, 0, h.nTrans*cell, h.nOrient*cell))
	for row := 0; row < h.nOrient; row++ {
		for col := 0; col < h.nTrans; col++ {
			shade := h.shade(float64(h.scores[row*h.nTrans+col]), lo, hi)
			value := uint16(math.Max(0, math.Min(65535, shade*65535)))
			fillGray(img, col*cell, row*cell, cell, color.Gray16{Y: value})
		}
	}
	return img, nil
}

// RenderMarked draws the landscape in color with the best-scoring cell
// painted red.
func (h *Heatmap[T]) RenderMarked(cell int) (image.Image, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	if cell < 1 {
		cell = 1
	}

	lo, hi := h.rangeOf()
	best := 0
	for i, s := range h.scores {
		if s < h.scores[best] {
			best = i
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, h.nTrans*cell, h.nOrient*cell))
	for row := 0; row < h.nOrient; row++ {
		for col := 0; col < h.nTrans; col++ {
			idx := row*h.nTrans + col
			shade := h.shade(float64(h.scores[idx]), lo, hi)
			value := uint8(math.Max(0, math.Min(255, shade*255)))
			c := color.RGBA{R: value, G: value, B: value, A: 255}
			if idx == best {
				c = color.RGBA{R: 255, G: 48, B: 48, A: 255}
			}
			fillRGBA(img, col*cell, row*cell, cell, c)
		}
	}
	return img, nil
}

// Save writes a rendered landscape as a JPEG image.
func (h *Heatmap[T]) Save(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveAll renders every heatmap with its best cell marked and writes
// them into outputDir as numbered JPEG files.
func SaveAll[T hwy.Floats](outputDir, prefix string, maps []*Heatmap[T], cell int) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for i, h := range maps {
		img, err := h.RenderMarked(cell)
		if err != nil {
			return fmt.Errorf("failed to render heatmap %d: %v", i, err)
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("%s_%03d.jpg", prefix, i))
		if err := h.Save(img, filename); err != nil {
			return fmt.Errorf("failed to save heatmap %d: %v", i, err)
		}
	}
	return nil
}

func (h *Heatmap[T]) check() error {
	if h.nOrient <= 0 || h.nTrans <= 0 {
		return fmt.Errorf("invalid grid %dx%d", h.nOrient, h.nTrans)
	}
	if len(h.scores) != h.nOrient*h.nTrans {
		return fmt.Errorf("scores hold %d values for a %dx%d grid", len(h.scores), h.nOrient, h.nTrans)
	}
	return nil
}

func (h *Heatmap[T]) rangeOf() (lo, hi float64) {
	lo, hi = float64(h.scores[0]), float64(h.scores[0])
	for _, s := range h.scores[1:] {
		v := float64(s)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// shade maps a score to [0,1] with the minimum at full brightness. A
// flat landscape renders mid-gray.
func (h *Heatmap[T]) shade(s, lo, hi float64) float64 {
	if hi == lo {
		return 0.5
	}
	return (hi - s) / (hi - lo)
}

func fillGray(img *image.Gray16, x0, y0, cell int, c color.Gray16) {
	for y := y0; y < y0+cell; y++ {
		for x := x0; x < x0+cell; x++ {
			img.SetGray16(x, y, c)
		}
	}
}

func fillRGBA(img *image.RGBA, x0, y0, cell int, c color.RGBA) {
	for y := y0; y < y0+cell; y++ {
		for x := x0; x < x0+cell; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
