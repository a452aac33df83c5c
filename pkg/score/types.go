// Package score implements the similarity kernels of the orientation
// search: summed weighted squared difference ("diff2") and negative
// normalized cross-correlation ("CC") between a projected reference and
// phase-shifted experimental images, over dense orientation/translation
// grids (coarse) or sparse job lists (fine). Lower scores are better for
// both metrics.
//
// Kernels accumulate into their output arrays rather than overwriting
// them, so one output can collect contributions from several calls (for
// example one call per image). Callers zero-initialize, or pre-fill with
// a baseline, before the first call.
package score

import (
	"fmt"

	"github.com/ajroetker/go-highway/hwy"
)

// Mode selects the reference and data dimensionality. It is resolved
// once per kernel call; the pixel loops carry no per-pixel dispatch.
type Mode int

const (
	// Mode2D scores 2D images against a 2D reference.
	Mode2D Mode = iota

	// ModeRef3D scores 2D images against central slices of a 3D
	// reference.
	ModeRef3D

	// ModeData3D scores 3D images against a 3D reference.
	ModeData3D
)

// String returns the mode name used in configs and reports.
func (m Mode) String() string {
	switch m {
	case Mode2D:
		return "2d"
	case ModeRef3D:
		return "ref3d"
	case ModeData3D:
		return "data3d"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Image is one experimental image in half-space layout: Fourier real and
// imaginary components plus a non-negative per-pixel weight used to
// pre-whiten or mask frequencies. Each array holds grid.Pixels() values,
// row-major with the column axis fastest. The kernels never modify an
// Image.
type Image[T hwy.Floats] struct {
	Real   []T
	Imag   []T
	Weight []T
}

// Translations holds candidate shifts as per-axis phase coefficients:
// shifting by candidate i multiplies the value at frequency (x, y, z) by
// the unit complex number with angle x*X[i] + y*Y[i] + z*Z[i]. Z is nil
// for 2D data.
type Translations[T hwy.Floats] struct {
	X []T
	Y []T
	Z []T
}

// Len returns the number of candidates.
func (t Translations[T]) Len() int {
	return len(t.X)
}

// Slice returns the candidate range [lo, hi).
func (t Translations[T]) Slice(lo, hi int) Translations[T] {
	s := Translations[T]{X: t.X[lo:hi], Y: t.Y[lo:hi]}
	if t.Z != nil {
		s.Z = t.Z[lo:hi]
	}
	return s
}

// JobList enumerates the sparse (orientation, translation) pairs scored
// by the fine kernels. Rot and Trans give each pair's orientation and
// translation index; job j covers the pair range
// [Start[j], Start[j]+Count[j]). Within a job every pair shares one
// orientation and the translation indices are consecutive, which lets
// the kernel project the reference once per job and reuse it across the
// job's translations. Fine outputs are addressed by pair index, so
// out[Start[j]+k] receives the score of the job's k-th translation.
type JobList struct {
	Rot   []int
	Trans []int
	Start []int
	Count []int
}

// DenseJobs returns the job list pairing every orientation with every
// translation, one job per orientation. Its pair order matches the
// coarse output layout, so fine scores over it land in the same slots a
// coarse call writes.
func DenseJobs(orientations, translations int) JobList {
	jl := JobList{
		Rot:   make([]int, 0, orientations*translations),
		Trans: make([]int, 0, orientations*translations),
		Start: make([]int, 0, orientations),
		Count: make([]int, 0, orientations),
	}
	for io := 0; io < orientations; io++ {
		jl.Start = append(jl.Start, len(jl.Rot))
		jl.Count = append(jl.Count, translations)
		for it := 0; it < translations; it++ {
			jl.Rot = append(jl.Rot, io)
			jl.Trans = append(jl.Trans, it)
		}
	}
	return jl
}

// Pairs returns the number of scored pairs, which is the minimum output
// length for a fine call.
func (jl JobList) Pairs() int {
	return len(jl.Rot)
}

// Jobs returns the number of jobs.
func (jl JobList) Jobs() int {
	return len(jl.Start)
}

// Slice returns the job range [lo, hi) as a view. Pair indexing is
// global, so sliced lists still address the same output slots; workers
// processing disjoint job ranges write disjoint output ranges.
func (jl JobList) Slice(lo, hi int) JobList {
	return JobList{Rot: jl.Rot, Trans: jl.Trans, Start: jl.Start[lo:hi], Count: jl.Count[lo:hi]}
}

// Validate checks the job-list contract against the given table sizes:
// in-range indices, one orientation per job, and consecutive translation
// indices within each job. The kernels assume these properties and never
// call Validate themselves; it exists for callers that construct job
// lists and want the contract checked during development.
func (jl JobList) Validate(orientations, translations int) error {
	if len(jl.Rot) != len(jl.Trans) {
		return fmt.Errorf("pair arrays disagree: %d orientation indices, %d translation indices",
			len(jl.Rot), len(jl.Trans))
	}
	if len(jl.Start) != len(jl.Count) {
		return fmt.Errorf("job arrays disagree: %d starts, %d counts", len(jl.Start), len(jl.Count))
	}
	for j := range jl.Start {
		first, count := jl.Start[j], jl.Count[j]
		if count <= 0 {
			return fmt.Errorf("job %d: count %d must be positive", j, count)
		}
		if first < 0 || first+count > len(jl.Rot) {
			return fmt.Errorf("job %d: pair range [%d,%d) outside %d pairs",
				j, first, first+count, len(jl.Rot))
		}
		rot := jl.Rot[first]
		if rot < 0 || rot >= orientations {
			return fmt.Errorf("job %d: orientation index %d outside [0,%d)", j, rot, orientations)
		}
		t0 := jl.Trans[first]
		for k := 0; k < count; k++ {
			if jl.Rot[first+k] != rot {
				return fmt.Errorf("job %d: pair %d has orientation %d, expected %d",
					j, k, jl.Rot[first+k], rot)
			}
			if jl.Trans[first+k] != t0+k {
				return fmt.Errorf("job %d: pair %d has translation %d, expected consecutive %d",
					j, k, jl.Trans[first+k], t0+k)
			}
		}
		if t0 < 0 || t0+count > translations {
			return fmt.Errorf("job %d: translation range [%d,%d) outside [0,%d)",
				j, t0, t0+count, translations)
		}
	}
	return nil
}
