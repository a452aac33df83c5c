// Package spectrum turns real-space images and volumes into the
// half-space frequency layout the scoring kernels consume, and builds
// the radial weighting masks applied to them.
package spectrum

import (
	"fmt"
	"math"

	"github.com/ajroetker/go-highway/hwy"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"cryomatch/pkg/halfspace"
)

// Plan2D computes centered half-space spectra of n-by-n real images.
// The phase origin sits at the image center (n/2, n/2), so a feature at
// the center transforms to a pure real envelope. A plan owns its
// scratch buffers and is not safe for concurrent use.
type Plan2D struct {
	n    int
	grid halfspace.Grid

	row *fourier.FFT
	col *fourier.CmplxFFT

	rowSpec []complex128
	rowSeq  []float64
	colIn   []complex128
	colOut  []complex128
}

// NewPlan2D builds a plan for n-by-n images with resolution cutoff
// maxR. n must be even so the wrap band and the centering phase are
// well defined.
func NewPlan2D(n, maxR int) (*Plan2D, error) {
	if n < 4 || n%2 != 0 {
		return nil, fmt.Errorf("image size %d: must be even and at least 4", n)
	}
	if maxR < 1 || maxR >= n/2 {
		return nil, fmt.Errorf("resolution cutoff %d outside [1, %d]", maxR, n/2-1)
	}
	xDim := n/2 + 1
	return &Plan2D{
		n:       n,
		grid:    halfspace.Grid2D(xDim, n, maxR),
		row:     fourier.NewFFT(n),
		col:     fourier.NewCmplxFFT(n),
		rowSpec: make([]complex128, xDim*n),
		rowSeq:  make([]float64, n),
		colIn:   make([]complex128, n),
		colOut:  make([]complex128, n),
	}, nil
}

// Grid returns the half-space layout the plan produces.
func (p *Plan2D) Grid() halfspace.Grid { return p.grid }

// Transform fills dstRe and dstIm with the centered spectrum of img.
// img is row-major n*n; the destinations hold Grid().Pixels() values.
// The spectrum is scaled by 1/n^2 so a unit image transforms to a unit
// zero-frequency coefficient.
func (p *Plan2D) Transform(img []float64, dstRe, dstIm []float64) error {
	if len(img) != p.n*p.n {
		return fmt.Errorf("image has %d samples, expected %d", len(img), p.n*p.n)
	}
	if len(dstRe) != p.grid.Pixels() || len(dstIm) != p.grid.Pixels() {
		return fmt.Errorf("destination holds %d+%d values, expected %d each",
			len(dstRe), len(dstIm), p.grid.Pixels())
	}

	xDim := p.grid.X
	for iy := 0; iy < p.n; iy++ {
		copy(p.rowSeq, img[iy*p.n:(iy+1)*p.n])
		p.row.Coefficients(p.rowSpec[iy*xDim:(iy+1)*xDim], p.rowSeq)
	}
	for x := 0; x < xDim; x++ {
		for iy := 0; iy < p.n; iy++ {
			p.colIn[iy] = p.rowSpec[iy*xDim+x]
		}
		p.col.Coefficients(p.colOut, p.colIn)
		for iy := 0; iy < p.n; iy++ {
			c := p.colOut[iy]
			// Shifting the phase origin to the image center flips the
			// sign of every odd frequency.
			if (x+iy)&1 == 1 {
				dstRe[iy*xDim+x] = -real(c)
				dstIm[iy*xDim+x] = -imag(c)
			} else {
				dstRe[iy*xDim+x] = real(c)
				dstIm[iy*xDim+x] = imag(c)
			}
		}
	}

	scale := 1 / float64(p.n*p.n)
	floats.Scale(scale, dstRe)
	floats.Scale(scale, dstIm)
	return nil
}

// Plan3D computes centered half-space spectra of n-by-n-by-n real
// volumes, laid out like Plan2D with planes stacked along z.
type Plan3D struct {
	n    int
	grid halfspace.Grid

	row  *fourier.FFT
	line *fourier.CmplxFFT

	spec    []complex128
	rowSeq  []float64
	lineIn  []complex128
	lineOut []complex128
}

// NewPlan3D builds a plan for n-cubed volumes with resolution cutoff
// maxR.
func NewPlan3D(n, maxR int) (*Plan3D, error) {
	if n < 4 || n%2 != 0 {
		return nil, fmt.Errorf("volume size %d: must be even and at least 4", n)
	}
	if maxR < 1 || maxR >= n/2 {
		return nil, fmt.Errorf("resolution cutoff %d outside [1, %d]", maxR, n/2-1)
	}
	xDim := n/2 + 1
	return &Plan3D{
		n:       n,
		grid:    halfspace.Grid3D(xDim, n, n, maxR),
		row:     fourier.NewFFT(n),
		line:    fourier.NewCmplxFFT(n),
		spec:    make([]complex128, xDim*n*n),
		rowSeq:  make([]float64, n),
		lineIn:  make([]complex128, n),
		lineOut: make([]complex128, n),
	}, nil
}

// Grid returns the half-space layout the plan produces.
func (p *Plan3D) Grid() halfspace.Grid { return p.grid }

// Transform fills dstRe and dstIm with the centered spectrum of vol,
// row-major n*n*n with x fastest, scaled by 1/n^3.
func (p *Plan3D) Transform(vol []float64, dstRe, dstIm []float64) error {
	if len(vol) != p.n*p.n*p.n {
		return fmt.Errorf("volume has %d samples, expected %d", len(vol), p.n*p.n*p.n)
	}
	if len(dstRe) != p.grid.Pixels() || len(dstIm) != p.grid.Pixels() {
		return fmt.Errorf("destination holds %d+%d values, expected %d each",
			len(dstRe), len(dstIm), p.grid.Pixels())
	}

	xDim := p.grid.X
	for r := 0; r < p.n*p.n; r++ {
		copy(p.rowSeq, vol[r*p.n:(r+1)*p.n])
		p.row.Coefficients(p.spec[r*xDim:(r+1)*xDim], p.rowSeq)
	}
	// transform along y within each plane
	for iz := 0; iz < p.n; iz++ {
		plane := p.spec[iz*p.n*xDim : (iz+1)*p.n*xDim]
		for x := 0; x < xDim; x++ {
			for iy := 0; iy < p.n; iy++ {
				p.lineIn[iy] = plane[iy*xDim+x]
			}
			p.line.Coefficients(p.lineOut, p.lineIn)
			for iy := 0; iy < p.n; iy++ {
				plane[iy*xDim+x] = p.lineOut[iy]
			}
		}
	}
	// transform along z and write out with the centering phase
	for iy := 0; iy < p.n; iy++ {
		for x := 0; x < xDim; x++ {
			for iz := 0; iz < p.n; iz++ {
				p.lineIn[iz] = p.spec[(iz*p.n+iy)*xDim+x]
			}
			p.line.Coefficients(p.lineOut, p.lineIn)
			for iz := 0; iz < p.n; iz++ {
				c := p.lineOut[iz]
				if (x+iy+iz)&1 == 1 {
					dstRe[(iz*p.n+iy)*xDim+x] = -real(c)
					dstIm[(iz*p.n+iy)*xDim+x] = -imag(c)
				} else {
					dstRe[(iz*p.n+iy)*xDim+x] = real(c)
					dstIm[(iz*p.n+iy)*xDim+x] = imag(c)
				}
			}
		}
	}

	scale := 1 / float64(p.n*p.n*p.n)
	floats.Scale(scale, dstRe)
	floats.Scale(scale, dstIm)
	return nil
}

// RadialWeight fills w with shape(r) per pixel, where r is the radius
// of the pixel's signed frequency coordinate. Pixels beyond the grid's
// cutoff get exactly zero regardless of shape, which keeps the dense
// and sparse kernels in agreement over rows past the cutoff.
func RadialWeight[T hwy.Floats](grid halfspace.Grid, shape func(r float64) float64, w []T) {
	maxR2 := grid.MaxR * grid.MaxR
	for pix := range w {
		var r2 int
		if grid.Is3D() {
			x, y, z := grid.Coords3D(pix)
			r2 = x*x + y*y + z*z
		} else {
			x, y := grid.Coords2D(pix)
			r2 = x*x + y*y
		}
		if r2 > maxR2 {
			w[pix] = 0
			continue
		}
		w[pix] = T(shape(math.Sqrt(float64(r2))))
	}
}

// BandLimit fills w with a raised-cosine band limit: flat response up
// to maxR-edge, a half-cosine falloff across the last edge shells, and
// zero beyond the cutoff.
func BandLimit[T hwy.Floats](grid halfspace.Grid, edge int, w []T) {
	if edge < 1 {
		edge = 1
	}
	if edge > grid.MaxR {
		edge = grid.MaxR
	}
	flat := float64(grid.MaxR - edge)
	span := float64(edge)
	RadialWeight(grid, func(r float64) float64 {
		if r <= flat {
			return 1
		}
		t := (r - flat) / span
		return 0.5 * (1 + math.Cos(math.Pi*t))
	}, w)
}

// Convert copies a float64 spectrum into the kernel precision.
func Convert[T hwy.Floats](src []float64) []T {
	dst := make([]T, len(src))
	for i, v := range src {
		dst[i] = T(v)
	}
	return dst
}
