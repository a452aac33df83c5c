// Package projector defines the reference-projection capability consumed
// by the scoring kernels, together with analytic reference models used
// by the demo pipeline and the kernel tests.
package projector

import (
	"math"

	"github.com/ajroetker/go-highway/hwy"

	"cryomatch/pkg/halfspace"
)

// Projector supplies complex reference values at half-space frequency
// coordinates under a candidate rotation. rot is a nine-entry row-major
// rotation matrix; which entries a form reads depends on the shape of
// the projection. Project2D rotates within the plane using entries
// 0, 1, 3 and 4. ProjectSlice maps plane coordinates onto the central
// slice of a 3D reference using entries 0, 1, 3, 4, 6 and 7. Project3D
// rotates full 3D coordinates and uses all nine.
//
// Implementations must be Hermitian in the rotated coordinate, meaning
// negating the frequency conjugates the value, or scores over the
// half-space lose their real-signal interpretation. Implementations are
// called from tight loops and must be safe for concurrent readers.
type Projector[T hwy.Floats] struct {
	// Grid describes the frequency layout the projector serves.
	Grid halfspace.Grid

	// Project2D samples a 2D reference at column x and signed row y.
	Project2D func(x, y int, rot []T) (re, im T)

	// ProjectSlice samples the central slice of a 3D reference at
	// column x and signed row y.
	ProjectSlice func(x, y int, rot []T) (re, im T)

	// Project3D samples a 3D reference at a full signed coordinate.
	Project3D func(x, y, z int, rot []T) (re, im T)
}

// Blob is one Gaussian component of an analytic reference: a smooth
// envelope of frequency width Decay around the origin, offset in real
// space by a linear phase ramp. Shift holds the per-axis phase slope in
// radians per frequency step, so a component centered c pixels off
// origin in a box of N pixels uses slope 2*pi*c/N.
type Blob struct {
	Amp   float64
	Decay float64
	Shift [3]float64
}

// NewGaussian returns a projector whose reference is a sum of Gaussian
// components evaluated in closed form, with all three projection shapes
// populated. Closed-form evaluation gives the kernels a reference whose
// rotated values are exact, not interpolated.
func NewGaussian[T hwy.Floats](grid halfspace.Grid, blobs ...Blob) *Projector[T] {
	bs := append([]Blob(nil), blobs...)
	p := &Projector[T]{Grid: grid}
	p.Project2D = func(x, y int, rot []T) (T, T) {
		fx, fy := float64(x), float64(y)
		kx := float64(rot[0])*fx + float64(rot[1])*fy
		ky := float64(rot[3])*fx + float64(rot[4])*fy
		return evalBlobs[T](bs, kx, ky, 0)
	}
	p.ProjectSlice = func(x, y int, rot []T) (T, T) {
		fx, fy := float64(x), float64(y)
		kx := float64(rot[0])*fx + float64(rot[1])*fy
		ky := float64(rot[3])*fx + float64(rot[4])*fy
		kz := float64(rot[6])*fx + float64(rot[7])*fy
		return evalBlobs[T](bs, kx, ky, kz)
	}
	p.Project3D = func(x, y, z int, rot []T) (T, T) {
		fx, fy, fz := float64(x), float64(y), float64(z)
		kx := float64(rot[0])*fx + float64(rot[1])*fy + float64(rot[2])*fz
		ky := float64(rot[3])*fx + float64(rot[4])*fy + float64(rot[5])*fz
		kz := float64(rot[6])*fx + float64(rot[7])*fy + float64(rot[8])*fz
		return evalBlobs[T](bs, kx, ky, kz)
	}
	return p
}

// NewUniform returns a projector whose reference takes the same complex
// value at every frequency regardless of orientation.
func NewUniform[T hwy.Floats](grid halfspace.Grid, re, im T) *Projector[T] {
	flat2 := func(x, y int, rot []T) (T, T) { return re, im }
	flat3 := func(x, y, z int, rot []T) (T, T) { return re, im }
	return &Projector[T]{Grid: grid, Project2D: flat2, ProjectSlice: flat2, Project3D: flat3}
}

func evalBlobs[T hwy.Floats](blobs []Blob, kx, ky, kz float64) (T, T) {
	r2 := kx*kx + ky*ky + kz*kz
	var re, im float64
	for _, b := range blobs {
		env := b.Amp * math.Exp(-r2/(2*b.Decay*b.Decay))
		s, c := math.Sincos(kx*b.Shift[0] + ky*b.Shift[1] + kz*b.Shift[2])
		re += env * c
		im -= env * s
	}
	return T(re), T(im)
}
