package projector

import (
	"math"
	"testing"

	"cryomatch/pkg/halfspace"
	"cryomatch/pkg/orient"
)

func TestGaussianConjugateSymmetry(t *testing.T) {
	grid := halfspace.Grid2D(9, 16, 6)
	p := NewGaussian[float64](grid, Blob{Amp: 1.5, Decay: 4, Shift: [3]float64{0.3, -0.7, 0}})

	identity := toSlice(orient.Identity())
	negated := make([]float64, 9)
	for i, v := range identity {
		negated[i] = -v
	}

	// Negating the rotation negates the sampled frequency, which must
	// conjugate the value.
	for _, pt := range [][2]int{{0, 0}, {1, 0}, {3, 2}, {5, -4}, {8, 6}} {
		re, im := p.Project2D(pt[0], pt[1], identity)
		mre, mim := p.Project2D(pt[0], pt[1], negated)
		if math.Abs(re-mre) > 1e-12 {
			t.Errorf("point %v: real %g vs mirrored %g", pt, re, mre)
		}
		if math.Abs(im+mim) > 1e-12 {
			t.Errorf("point %v: imag %g vs mirrored %g, expected conjugate", pt, im, mim)
		}
	}
}

func TestSliceMatchesPlaneAtIdentity(t *testing.T) {
	grid := halfspace.Grid2D(9, 16, 6)
	blob := Blob{Amp: 2, Decay: 3, Shift: [3]float64{0.4, 0.2, 0}}
	p := NewGaussian[float64](grid, blob)
	identity := toSlice(orient.Identity())

	// At identity the central slice stays in the z=0 plane, so a blob
	// with no z phase must reproduce the plain 2D values.
	for x := 0; x < grid.X; x++ {
		for y := -grid.MaxR; y <= grid.MaxR; y++ {
			re2, im2 := p.Project2D(x, y, identity)
			reS, imS := p.ProjectSlice(x, y, identity)
			if math.Abs(re2-reS) > 1e-12 || math.Abs(im2-imS) > 1e-12 {
				t.Fatalf("(%d,%d): slice (%g,%g) vs plane (%g,%g)", x, y, reS, imS, re2, im2)
			}
		}
	}
}

func TestGaussianEnvelopeIsRadial(t *testing.T) {
	grid := halfspace.Grid2D(9, 16, 6)
	p := NewGaussian[float64](grid, Blob{Amp: 1, Decay: 2.5})

	identity := toSlice(orient.Identity())
	quarter := toSlice(orient.ZYZ(math.Pi/2, 0, 0))

	// A centered blob has no phase, so rotating the sample point must
	// preserve the value exactly.
	re1, im1 := p.Project2D(4, 0, identity)
	re2, im2 := p.Project2D(4, 0, quarter)
	if math.Abs(re1-re2) > 1e-12 {
		t.Errorf("rotated envelope %g, expected %g", re2, re1)
	}
	if im1 != 0 || math.Abs(im2) > 1e-12 {
		t.Errorf("centered blob has phase: imag %g and %g", im1, im2)
	}
}

func TestUniformIgnoresRotation(t *testing.T) {
	grid := halfspace.Grid3D(5, 8, 8, 3)
	p := NewUniform[float32](grid, 0.25, 0)
	rot := toSlice32(orient.ZYZ(0.3, 1.1, -0.4))
	if re, im := p.Project2D(2, -1, rot); re != 0.25 || im != 0 {
		t.Errorf("Project2D = (%g,%g), expected (0.25,0)", re, im)
	}
	if re, im := p.ProjectSlice(4, 3, rot); re != 0.25 || im != 0 {
		t.Errorf("ProjectSlice = (%g,%g), expected (0.25,0)", re, im)
	}
	if re, im := p.Project3D(1, 2, -3, rot); re != 0.25 || im != 0 {
		t.Errorf("Project3D = (%g,%g), expected (0.25,0)", re, im)
	}
}

func TestShiftProducesLinearPhase(t *testing.T) {
	grid := halfspace.Grid2D(9, 16, 6)
	shift := [3]float64{0.5, -0.25, 0}
	p := NewGaussian[float64](grid, Blob{Amp: 1, Decay: 100, Shift: shift})
	identity := toSlice(orient.Identity())

	// With a very wide envelope the value is dominated by the phase
	// ramp: angle(value) = -(x*sx + y*sy).
	for _, pt := range [][2]int{{1, 0}, {0, 1}, {3, -2}, {6, 5}} {
		re, im := p.Project2D(pt[0], pt[1], identity)
		got := math.Atan2(im, re)
		want := -(float64(pt[0])*shift[0] + float64(pt[1])*shift[1])
		want = math.Atan2(math.Sin(want), math.Cos(want))
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("point %v: phase %g, expected %g", pt, got, want)
		}
	}
}

func toSlice(m [9]float64) []float64 {
	return m[:]
}

func toSlice32(m [9]float64) []float32 {
	out := make([]float32, 9)
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
