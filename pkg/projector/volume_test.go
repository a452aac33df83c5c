package projector

import (
	"math"
	"testing"

	"cryomatch/pkg/halfspace"
	"cryomatch/pkg/orient"
)

func smoothBlobs() []Blob {
	return []Blob{
		{Amp: 2.0, Decay: 4.0, Shift: [3]float64{0.3, -0.2, 0.1}},
		{Amp: 0.9, Decay: 2.5, Shift: [3]float64{-0.15, 0.35, 0}},
	}
}

func TestVolumeMatchesLatticeAtIdentity(t *testing.T) {
	grid := halfspace.Grid2D(9, 16, 6)
	analytic := NewGaussian[float64](grid, smoothBlobs()...)
	re, im := Rasterize(analytic)
	vol, err := NewVolume(grid, re, im)
	if err != nil {
		t.Fatalf("NewVolume failed: %v", err)
	}

	identity := toSlice(orient.Identity())
	for pix := 0; pix < grid.Pixels(); pix++ {
		x, y := grid.Coords2D(pix)
		ar, ai := analytic.Project2D(x, y, identity)
		vr, vi := vol.Project2D(x, y, identity)
		if math.Abs(vr-ar) > 1e-15 || math.Abs(vi-ai) > 1e-15 {
			t.Fatalf("Pixel (%d,%d): lattice sample (%g,%g) does not reproduce (%g,%g)", x, y, vr, vi, ar, ai)
		}
	}
}

func TestVolumeApproximatesRotatedAnalytic(t *testing.T) {
	grid := halfspace.Grid2D(9, 16, 6)
	analytic := NewGaussian[float64](grid, smoothBlobs()...)
	re, im := Rasterize(analytic)
	vol, err := NewVolume(grid, re, im)
	if err != nil {
		t.Fatalf("NewVolume failed: %v", err)
	}

	// 140 degrees sends many rotated columns negative, exercising the
	// Hermitian mirror path.
	rot := toSlice(orient.ZYZ(0, 0, 140*math.Pi/180))
	var worst, signal float64
	for pix := 0; pix < grid.Pixels(); pix++ {
		x, y := grid.Coords2D(pix)
		if x*x+y*y > grid.MaxR*grid.MaxR {
			continue
		}
		ar, ai := analytic.Project2D(x, y, rot)
		vr, vi := vol.Project2D(x, y, rot)
		worst = math.Max(worst, math.Max(math.Abs(vr-ar), math.Abs(vi-ai)))
		signal = math.Max(signal, math.Abs(ar))
	}
	if worst > 0.2 {
		t.Errorf("Interpolation error %g exceeds tolerance for a smooth reference", worst)
	}
	if signal < 0.01 {
		t.Error("Reference vanished; the comparison is not meaningful")
	}
}

func TestVolumeConjugateSymmetry(t *testing.T) {
	grid := halfspace.Grid2D(9, 16, 6)
	analytic := NewGaussian[float64](grid, smoothBlobs()...)
	re, im := Rasterize(analytic)
	vol, err := NewVolume(grid, re, im)
	if err != nil {
		t.Fatalf("NewVolume failed: %v", err)
	}

	fwd := toSlice(orient.ZYZ(0, 0, 0.7))
	neg := make([]float64, 9)
	for i, v := range fwd {
		neg[i] = -v
	}

	for pix := 0; pix < grid.Pixels(); pix++ {
		x, y := grid.Coords2D(pix)
		if x*x+y*y > grid.MaxR*grid.MaxR {
			continue
		}
		fr, fi := vol.Project2D(x, y, fwd)
		nr, ni := vol.Project2D(x, y, neg)
		if math.Abs(fr-nr) > 1e-12 || math.Abs(fi+ni) > 1e-12 {
			t.Fatalf("Pixel (%d,%d): negated rotation gave (%g,%g), want conjugate of (%g,%g)", x, y, nr, ni, fr, fi)
		}
	}
}

func TestVolumeSliceMatchesAnalytic3D(t *testing.T) {
	grid := halfspace.Grid3D(5, 8, 8, 3)
	analytic := NewGaussian[float64](grid, smoothBlobs()...)
	re, im := Rasterize(analytic)
	vol, err := NewVolume(grid, re, im)
	if err != nil {
		t.Fatalf("NewVolume failed: %v", err)
	}

	// The identity slice lies on the lattice, so sampling is exact.
	identity := toSlice(orient.Identity())
	for y := -grid.MaxR; y <= grid.MaxR; y++ {
		for x := 0; x <= grid.MaxR; x++ {
			ar, ai := analytic.ProjectSlice(x, y, identity)
			vr, vi := vol.ProjectSlice(x, y, identity)
			if math.Abs(vr-ar) > 1e-15 || math.Abs(vi-ai) > 1e-15 {
				t.Fatalf("Slice (%d,%d): got (%g,%g), want (%g,%g)", x, y, vr, vi, ar, ai)
			}
		}
	}

	// A tilted slice leaves the lattice and interpolates.
	rot := toSlice(orient.ZYZ(0.4, 0.5, -0.3))
	var worst float64
	for y := -grid.MaxR; y <= grid.MaxR; y++ {
		for x := 0; x <= grid.MaxR; x++ {
			if x*x+y*y > grid.MaxR*grid.MaxR {
				continue
			}
			ar, ai := analytic.ProjectSlice(x, y, rot)
			vr, vi := vol.ProjectSlice(x, y, rot)
			worst = math.Max(worst, math.Max(math.Abs(vr-ar), math.Abs(vi-ai)))
		}
	}
	if worst > 0.25 {
		t.Errorf("Tilted slice interpolation error %g exceeds tolerance", worst)
	}
}

func TestVolumeFloat32(t *testing.T) {
	grid := halfspace.Grid2D(9, 16, 6)
	analytic := NewGaussian[float32](grid, smoothBlobs()...)
	re, im := Rasterize(analytic)
	vol, err := NewVolume(grid, re, im)
	if err != nil {
		t.Fatalf("NewVolume failed: %v", err)
	}

	identity := toSlice32(orient.Identity())
	for pix := 0; pix < grid.Pixels(); pix++ {
		x, y := grid.Coords2D(pix)
		ar, ai := analytic.Project2D(x, y, identity)
		vr, vi := vol.Project2D(x, y, identity)
		if math.Abs(float64(vr-ar)) > 1e-6 || math.Abs(float64(vi-ai)) > 1e-6 {
			t.Fatalf("Pixel (%d,%d): got (%g,%g), want (%g,%g)", x, y, vr, vi, ar, ai)
		}
	}
}

func TestVolumeRejectsBadLengths(t *testing.T) {
	grid := halfspace.Grid2D(9, 16, 6)
	re := make([]float64, grid.Pixels())
	im := make([]float64, grid.Pixels()-1)
	if _, err := NewVolume(grid, re, im); err == nil {
		t.Error("Expected error for mismatched plane lengths, got nil")
	}
}
