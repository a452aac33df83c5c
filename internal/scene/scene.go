// Package scene fabricates synthetic matching problems: an analytic
// reference built from real-space features, orientation and shift
// grids, and noisy observations whose generating grid point is known.
package scene

import (
	"fmt"
	"math"

	"github.com/ajroetker/go-highway/hwy"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"cryomatch/pkg/halfspace"
	"cryomatch/pkg/orient"
	"cryomatch/pkg/projector"
	"cryomatch/pkg/score"
	"cryomatch/pkg/spectrum"
)

// Feature is one real-space Gaussian feature of the synthetic specimen.
type Feature struct {
	// Amp is the peak amplitude of the feature.
	Amp float64

	// Sigma is the spatial width in pixels.
	Sigma float64

	// Center is the feature position in pixel coordinates.
	Center [3]float64
}

// Params configures a synthetic scenario.
type Params struct {
	// Size is the real-space edge length in pixels. Must be even.
	Size int

	// MaxR is the resolution cutoff in frequency pixels.
	MaxR int

	// Mode selects the projection geometry observations are made with.
	Mode score.Mode

	// Features lists the specimen's Gaussian features.
	Features []Feature

	// Angles is the orientation grid in ZYZ Euler angles.
	Angles [][3]float64

	// ShiftHalf and ShiftStep define the translation grid: candidates
	// cover [-ShiftHalf..ShiftHalf] steps of ShiftStep pixels per axis.
	ShiftHalf int
	ShiftStep float64

	// Observations is how many images to fabricate.
	Observations int

	// Noise is the standard deviation of the additive Gaussian noise
	// applied to each frequency component.
	Noise float64

	// Seed makes fabrication reproducible.
	Seed uint64

	// WeightEdge is the width in shells of the raised-cosine falloff
	// applied to the frequency weights.
	WeightEdge int

	// Gridded replaces the closed-form reference with a rasterized copy
	// served by interpolation, the way stored reference maps are.
	Gridded bool
}

// Truth identifies the generating orientation and translation of one
// observation.
type Truth struct {
	Orient int
	Trans  int
}

// Scene is a ready-to-score matching problem.
type Scene[T hwy.Floats] struct {
	// Mode is the projection geometry the observations were made with.
	Mode score.Mode

	// Grid is the half-space frequency layout shared by every image.
	Grid halfspace.Grid

	// Proj serves reference values to the scoring kernels.
	Proj *projector.Projector[T]

	// Orients and Trans are the search grids.
	Orients orient.Set[T]
	Trans   score.Translations[T]

	// Images holds the fabricated observations.
	Images []score.Image[T]

	// Truth records the grid point that generated each observation.
	Truth []Truth
}

// Build fabricates a scenario. It converts the features into an
// analytic reference, lays out the search grids, and renders one noisy
// observation per requested image at a randomly drawn grid point.
func Build[T hwy.Floats](p Params) (*Scene[T], error) {
	if p.Size < 4 || p.Size%2 != 0 {
		return nil, fmt.Errorf("size %d: need an even size of at least 4", p.Size)
	}
	if p.MaxR < 1 || p.MaxR >= p.Size/2 {
		return nil, fmt.Errorf("cutoff %d outside [1, %d]", p.MaxR, p.Size/2-1)
	}
	if len(p.Features) == 0 {
		return nil, fmt.Errorf("no features to project")
	}
	if len(p.Angles) == 0 {
		return nil, fmt.Errorf("empty orientation grid")
	}
	if p.Observations < 1 {
		return nil, fmt.Errorf("need at least one observation, got %d", p.Observations)
	}

	var grid halfspace.Grid
	if p.Mode == score.ModeData3D {
		grid = halfspace.Grid3D(p.Size/2+1, p.Size, p.Size, p.MaxR)
	} else {
		grid = halfspace.Grid2D(p.Size/2+1, p.Size, p.MaxR)
	}

	trans := ShiftGrid[T](p.Size, p.ShiftHalf, p.ShiftStep)
	if p.Mode == score.ModeData3D {
		// Shifts stay in the image plane; volumes get a zero z phase.
		trans.Z = make([]T, len(trans.X))
	}

	proj := projector.NewGaussian[T](grid, Blobs(p.Size, p.Features)...)
	if p.Gridded {
		var err error
		proj, err = gridReference[T](p, grid)
		if err != nil {
			return nil, err
		}
	}
	return buildScene(p, grid, proj, trans)
}

// gridReference rasterizes the analytic reference and wraps it in an
// interpolating projector. The slice geometry keeps the plane layout
// for images while sampling the full rasterized volume.
func gridReference[T hwy.Floats](p Params, grid halfspace.Grid) (*projector.Projector[T], error) {
	volGrid := grid
	if p.Mode == score.ModeRef3D {
		volGrid = halfspace.Grid3D(p.Size/2+1, p.Size, p.Size, p.MaxR)
	}
	src := projector.NewGaussian[T](volGrid, Blobs(p.Size, p.Features)...)
	re, im := projector.Rasterize(src)
	vol, err := projector.NewVolume(volGrid, re, im)
	if err != nil {
		return nil, fmt.Errorf("failed to grid the reference: %v", err)
	}
	if p.Mode == score.ModeRef3D {
		vol = &projector.Projector[T]{Grid: grid, ProjectSlice: vol.ProjectSlice}
	}
	return vol, nil
}

func buildScene[T hwy.Floats](p Params, grid halfspace.Grid, proj *projector.Projector[T], trans score.Translations[T]) (*Scene[T], error) {
	sc := &Scene[T]{
		Mode:    p.Mode,
		Grid:    grid,
		Proj:    proj,
		Orients: orient.FromAngles[T](p.Angles),
		Trans:   trans,
	}

	weight := make([]T, grid.Pixels())
	spectrum.BandLimit(grid, p.WeightEdge, weight)

	noise := distuv.Normal{Mu: 0, Sigma: p.Noise, Src: rand.NewSource(p.Seed)}
	pick := rand.New(rand.NewSource(p.Seed + 1))

	for i := 0; i < p.Observations; i++ {
		truth := Truth{
			Orient: pick.Intn(sc.Orients.Len()),
			Trans:  pick.Intn(sc.Trans.Len()),
		}
		img := sc.render(truth)
		if p.Noise > 0 {
			for pix := range img.Real {
				img.Real[pix] += T(noise.Rand())
				img.Imag[pix] += T(noise.Rand())
			}
		}
		img.Weight = append([]T(nil), weight...)
		sc.Images = append(sc.Images, img)
		sc.Truth = append(sc.Truth, truth)
	}
	return sc, nil
}

// render samples the reference at the truth orientation and bakes in
// the inverse of the truth shift, so that scoring the truth candidate
// reproduces the unshifted reference exactly.
func (s *Scene[T]) render(truth Truth) score.Image[T] {
	rot := s.Orients.At(truth.Orient)
	tx := float64(s.Trans.X[truth.Trans])
	ty := float64(s.Trans.Y[truth.Trans])
	var tz float64
	if s.Trans.Z != nil {
		tz = float64(s.Trans.Z[truth.Trans])
	}

	n := s.Grid.Pixels()
	img := score.Image[T]{
		Real: make([]T, n),
		Imag: make([]T, n),
	}
	for pix := 0; pix < n; pix++ {
		var re, im T
		var phase float64
		if s.Grid.Is3D() {
			x, y, z := s.Grid.Coords3D(pix)
			re, im = s.Proj.Project3D(x, y, z, rot)
			phase = float64(x)*tx + float64(y)*ty + float64(z)*tz
		} else {
			x, y := s.Grid.Coords2D(pix)
			if s.Mode == score.ModeRef3D {
				re, im = s.Proj.ProjectSlice(x, y, rot)
			} else {
				re, im = s.Proj.Project2D(x, y, rot)
			}
			phase = float64(x)*tx + float64(y)*ty
		}
		sn, cs := math.Sincos(phase)
		img.Real[pix] = T(cs)*re + T(sn)*im
		img.Imag[pix] = T(cs)*im - T(sn)*re
	}
	return img
}

// Blobs converts real-space features into the frequency-domain form the
// projector evaluates. A Gaussian of width sigma centered at c becomes
// a Gaussian envelope of decay n/(2*pi*sigma) carrying a linear phase,
// scaled to match the unit-normalized transform of the n-pixel image.
func Blobs(size int, features []Feature) []projector.Blob {
	blobs := make([]projector.Blob, len(features))
	half := float64(size) / 2
	for i, f := range features {
		b := projector.Blob{
			Amp:   f.Amp * 2 * math.Pi * f.Sigma * f.Sigma / float64(size*size),
			Decay: float64(size) / (2 * math.Pi * f.Sigma),
		}
		for k := 0; k < 3; k++ {
			b.Shift[k] = 2 * math.Pi * (f.Center[k] - half) / float64(size)
		}
		blobs[i] = b
	}
	return blobs
}

// PsiGrid returns n in-plane rotations evenly covering the full circle.
func PsiGrid(n int) [][3]float64 {
	angles := make([][3]float64, n)
	for i := range angles {
		angles[i] = [3]float64{0, 0, 2 * math.Pi * float64(i) / float64(n)}
	}
	return angles
}

// EulerGrid returns the product of nRot azimuthal, nTilt polar, and
// nPsi in-plane angles in ZYZ convention. Tilt samples stay off the
// poles, where rot and psi would collapse into a single rotation.
func EulerGrid(nRot, nTilt, nPsi int) [][3]float64 {
	angles := make([][3]float64, 0, nRot*nTilt*nPsi)
	for r := 0; r < nRot; r++ {
		rot := 2 * math.Pi * float64(r) / float64(nRot)
		for t := 0; t < nTilt; t++ {
			tilt := math.Pi * (float64(t) + 0.5) / float64(nTilt)
			for p := 0; p < nPsi; p++ {
				psi := 2 * math.Pi * float64(p) / float64(nPsi)
				angles = append(angles, [3]float64{rot, tilt, psi})
			}
		}
	}
	return angles
}

// ShiftGrid returns a square grid of translation candidates covering
// [-half..half] steps of the given pixel spacing per axis, expressed in
// the phase units the kernels expect (2*pi/size per pixel).
func ShiftGrid[T hwy.Floats](size, half int, step float64) score.Translations[T] {
	n := 2*half + 1
	tr := score.Translations[T]{
		X: make([]T, 0, n*n),
		Y: make([]T, 0, n*n),
	}
	unit := 2 * math.Pi / float64(size)
	for iy := -half; iy <= half; iy++ {
		for ix := -half; ix <= half; ix++ {
			tr.X = append(tr.X, T(unit*step*float64(ix)))
			tr.Y = append(tr.Y, T(unit*step*float64(iy)))
		}
	}
	return tr
}
