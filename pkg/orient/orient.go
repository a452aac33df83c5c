// Package orient manages tables of candidate rotations for an alignment
// search. Orientations are stored as flat row-major 3x3 matrices, nine
// entries per candidate, which is the layout the scoring kernels read.
package orient

import (
	"math"

	"github.com/ajroetker/go-highway/hwy"
	"gonum.org/v1/gonum/mat"
)

// Set is a table of candidate orientations. The zero value is an empty
// set; Append and the From constructors build it up.
type Set[T hwy.Floats] struct {
	mats []T
}

// FromMatrices builds a set from explicit rotation matrices.
func FromMatrices[T hwy.Floats](ms ...[9]float64) Set[T] {
	var s Set[T]
	for _, m := range ms {
		s = s.Append(m)
	}
	return s
}

// FromAngles builds a set from (rot, tilt, psi) Euler triples in radians.
func FromAngles[T hwy.Floats](angles [][3]float64) Set[T] {
	s := Set[T]{mats: make([]T, 0, len(angles)*9)}
	for _, a := range angles {
		s = s.Append(ZYZ(a[0], a[1], a[2]))
	}
	return s
}

// Append adds one orientation and returns the updated set.
func (s Set[T]) Append(m [9]float64) Set[T] {
	for _, v := range m {
		s.mats = append(s.mats, T(v))
	}
	return s
}

// Len returns the number of orientations in the set.
func (s Set[T]) Len() int {
	return len(s.mats) / 9
}

// At returns the nine matrix entries of orientation i as a view into the
// set's backing array.
func (s Set[T]) At(i int) []T {
	return s.mats[i*9 : i*9+9]
}

// Slice returns the sub-set covering orientations [lo, hi), sharing the
// backing array.
func (s Set[T]) Slice(lo, hi int) Set[T] {
	return Set[T]{mats: s.mats[lo*9 : hi*9]}
}

// Identity returns the identity rotation.
func Identity() [9]float64 {
	return [9]float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// ZYZ composes a rotation from Euler angles in radians: first a rotation
// by rot about z, then tilt about y, then psi about z again, i.e.
// R = Rz(psi)·Ry(tilt)·Rz(rot) acting on column vectors.
func ZYZ(rot, tilt, psi float64) [9]float64 {
	r := mat.NewDense(3, 3, rotZ(rot))
	t := mat.NewDense(3, 3, rotY(tilt))
	p := mat.NewDense(3, 3, rotZ(psi))

	var tr, ptr mat.Dense
	tr.Mul(t, r)
	ptr.Mul(p, &tr)

	var out [9]float64
	copy(out[:], ptr.RawMatrix().Data)
	return out
}

func rotZ(a float64) []float64 {
	s, c := math.Sincos(a)
	return []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

func rotY(a float64) []float64 {
	s, c := math.Sincos(a)
	return []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}
