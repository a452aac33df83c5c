// Package phase builds the per-translation trigonometric lookup tables
// used to shift half-space images in the Fourier domain. A translation by
// t multiplies the value at frequency k by e^(i k·t); the tables hold
// sin/cos(coefficient × offset) per axis so the 2D or 3D phase at a pixel
// is composed from 1D entries with a few multiply-adds instead of a
// sine/cosine pair per pixel per translation.
package phase

import (
	"math"

	"github.com/ajroetker/go-highway/hwy"
)

// Tables holds per-translation sine/cosine rows for up to three axes.
// Row i of an axis covers every non-negative integer offset along that
// axis for translation i; negative (wrapped) coordinates reuse the
// mirrored entry with the sine negated. The zero value is ready to use,
// and Build2D/Build3D grow the backing slices in place so one Tables can
// be reused across calls without reallocating.
type Tables[T hwy.Floats] struct {
	SinX, CosX []T
	SinY, CosY []T
	SinZ, CosZ []T

	nTrans, xDim, yDim, zDim int
}

// Build2D fills the x and y tables for the given per-axis phase
// coefficients, one pair per translation. len(tx) and len(ty) must match.
func (t *Tables[T]) Build2D(tx, ty []T, xDim, yDim int) {
	n := len(tx)
	t.nTrans, t.xDim, t.yDim, t.zDim = n, xDim, yDim, 0

	t.SinX = grow(t.SinX, n*xDim)
	t.CosX = grow(t.CosX, n*xDim)
	t.SinY = grow(t.SinY, n*yDim)
	t.CosY = grow(t.CosY, n*yDim)

	for i := 0; i < n; i++ {
		fillAxis(t.SinX[i*xDim:(i+1)*xDim], t.CosX[i*xDim:(i+1)*xDim], tx[i])
		fillAxis(t.SinY[i*yDim:(i+1)*yDim], t.CosY[i*yDim:(i+1)*yDim], ty[i])
	}
}

// Build3D fills the x, y and z tables for the given per-axis phase
// coefficients, one triple per translation.
func (t *Tables[T]) Build3D(tx, ty, tz []T, xDim, yDim, zDim int) {
	t.Build2D(tx, ty, xDim, yDim)
	n := len(tz)
	t.zDim = zDim

	t.SinZ = grow(t.SinZ, n*zDim)
	t.CosZ = grow(t.CosZ, n*zDim)

	for i := 0; i < n; i++ {
		fillAxis(t.SinZ[i*zDim:(i+1)*zDim], t.CosZ[i*zDim:(i+1)*zDim], tz[i])
	}
}

// Is3D reports whether z tables were built by the last Build call.
func (t *Tables[T]) Is3D() bool {
	return t.zDim > 0
}

// RowX returns the contiguous x-axis sine and cosine rows for one
// translation. Column coordinates are never negative, so callers index
// these rows directly.
func (t *Tables[T]) RowX(itrans int) (sin, cos []T) {
	base := itrans * t.xDim
	return t.SinX[base : base+t.xDim], t.CosX[base : base+t.xDim]
}

// LookupY returns the row-axis sine and cosine for a signed coordinate.
// A negative coordinate mirrors the positive entry and negates the sine.
func (t *Tables[T]) LookupY(itrans, y int) (s, c T) {
	base := itrans * t.yDim
	if y < 0 {
		return -t.SinY[base-y], t.CosY[base-y]
	}
	return t.SinY[base+y], t.CosY[base+y]
}

// LookupZ is LookupY for the depth axis.
func (t *Tables[T]) LookupZ(itrans, z int) (s, c T) {
	base := itrans * t.zDim
	if z < 0 {
		return -t.SinZ[base-z], t.CosZ[base-z]
	}
	return t.SinZ[base+z], t.CosZ[base+z]
}

// Compose applies the angle-addition identity to two sine/cosine pairs:
// sin(a+b) = sin(a)cos(b) + cos(a)sin(b) and
// cos(a+b) = cos(a)cos(b) - sin(a)sin(b).
// Composing the z pair onto an already-composed xy pair yields the full
// 3D phase.
func Compose[T hwy.Floats](sa, ca, sb, cb T) (s, c T) {
	return sa*cb + ca*sb, ca*cb - sa*sb
}

func fillAxis[T hwy.Floats](sin, cos []T, coeff T) {
	c := float64(coeff)
	for j := range sin {
		s, co := math.Sincos(float64(j) * c)
		sin[j] = T(s)
		cos[j] = T(co)
	}
}

func grow[T hwy.Floats](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
