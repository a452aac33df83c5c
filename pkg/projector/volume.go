package projector

import (
	"fmt"
	"math"

	"github.com/ajroetker/go-highway/hwy"

	"cryomatch/pkg/halfspace"
)

// NewVolume returns a projector backed by a gridded half-space
// reference, sampled under rotation by linear interpolation. The
// populated shapes follow the grid: a plane serves Project2D by
// bilinear sampling, a volume serves ProjectSlice and Project3D by
// trilinear sampling. Rotated coordinates landing in the negative
// column half read the Hermitian mirror and conjugate the result;
// neighbors outside the stored extent contribute zero.
func NewVolume[T hwy.Floats](grid halfspace.Grid, re, im []T) (*Projector[T], error) {
	if len(re) != grid.Pixels() || len(im) != grid.Pixels() {
		return nil, fmt.Errorf("reference holds %d/%d values, expected %d", len(re), len(im), grid.Pixels())
	}

	v := &volumeRef[T]{grid: grid, re: re, im: im}
	p := &Projector[T]{Grid: grid}
	if grid.Is3D() {
		p.ProjectSlice = func(x, y int, rot []T) (T, T) {
			fx, fy := float64(x), float64(y)
			kx := float64(rot[0])*fx + float64(rot[1])*fy
			ky := float64(rot[3])*fx + float64(rot[4])*fy
			kz := float64(rot[6])*fx + float64(rot[7])*fy
			return v.sample3(kx, ky, kz)
		}
		p.Project3D = func(x, y, z int, rot []T) (T, T) {
			fx, fy, fz := float64(x), float64(y), float64(z)
			kx := float64(rot[0])*fx + float64(rot[1])*fy + float64(rot[2])*fz
			ky := float64(rot[3])*fx + float64(rot[4])*fy + float64(rot[5])*fz
			kz := float64(rot[6])*fx + float64(rot[7])*fy + float64(rot[8])*fz
			return v.sample3(kx, ky, kz)
		}
	} else {
		p.Project2D = func(x, y int, rot []T) (T, T) {
			fx, fy := float64(x), float64(y)
			kx := float64(rot[0])*fx + float64(rot[1])*fy
			ky := float64(rot[3])*fx + float64(rot[4])*fy
			return v.sample2(kx, ky)
		}
	}
	return p, nil
}

// Rasterize evaluates src on its grid's lattice at the identity
// rotation, producing the planes a volume-backed projector serves.
func Rasterize[T hwy.Floats](src *Projector[T]) (re, im []T) {
	g := src.Grid
	identity := []T{1, 0, 0, 0, 1, 0, 0, 0, 1}
	re = make([]T, g.Pixels())
	im = make([]T, g.Pixels())
	for pix := range re {
		if g.Is3D() {
			x, y, z := g.Coords3D(pix)
			re[pix], im[pix] = src.Project3D(x, y, z, identity)
		} else {
			x, y := g.Coords2D(pix)
			re[pix], im[pix] = src.Project2D(x, y, identity)
		}
	}
	return re, im
}

type volumeRef[T hwy.Floats] struct {
	grid   halfspace.Grid
	re, im []T
}

func (v *volumeRef[T]) sample2(kx, ky float64) (T, T) {
	conj := false
	if kx < 0 {
		kx, ky = -kx, -ky
		conj = true
	}
	x0 := int(math.Floor(kx))
	y0 := int(math.Floor(ky))
	fx := T(kx - float64(x0))
	fy := T(ky - float64(y0))

	r00, i00 := v.at2(x0, y0)
	r10, i10 := v.at2(x0+1, y0)
	r01, i01 := v.at2(x0, y0+1)
	r11, i11 := v.at2(x0+1, y0+1)

	re := (1-fy)*((1-fx)*r00+fx*r10) + fy*((1-fx)*r01+fx*r11)
	im := (1-fy)*((1-fx)*i00+fx*i10) + fy*((1-fx)*i01+fx*i11)
	if conj {
		im = -im
	}
	return re, im
}

func (v *volumeRef[T]) sample3(kx, ky, kz float64) (T, T) {
	conj := false
	if kx < 0 {
		kx, ky, kz = -kx, -ky, -kz
		conj = true
	}
	x0 := int(math.Floor(kx))
	y0 := int(math.Floor(ky))
	z0 := int(math.Floor(kz))
	fx := T(kx - float64(x0))
	fy := T(ky - float64(y0))
	fz := T(kz - float64(z0))

	var re, im T
	for dz := 0; dz < 2; dz++ {
		wz := fz
		if dz == 0 {
			wz = 1 - fz
		}
		for dy := 0; dy < 2; dy++ {
			wy := fy
			if dy == 0 {
				wy = 1 - fy
			}
			for dx := 0; dx < 2; dx++ {
				wx := fx
				if dx == 0 {
					wx = 1 - fx
				}
				r, i := v.at3(x0+dx, y0+dy, z0+dz)
				w := wx * wy * wz
				re += w * r
				im += w * i
			}
		}
	}
	if conj {
		im = -im
	}
	return re, im
}

func (v *volumeRef[T]) at2(x, y int) (T, T) {
	if x < 0 || x >= v.grid.X {
		return 0, 0
	}
	if y < 0 {
		y += v.grid.Y
	}
	if y < 0 || y >= v.grid.Y {
		return 0, 0
	}
	p := y*v.grid.X + x
	return v.re[p], v.im[p]
}

func (v *volumeRef[T]) at3(x, y, z int) (T, T) {
	if x < 0 || x >= v.grid.X {
		return 0, 0
	}
	if y < 0 {
		y += v.grid.Y
	}
	if z < 0 {
		z += v.grid.Z
	}
	if y < 0 || y >= v.grid.Y || z < 0 || z >= v.grid.Z {
		return 0, 0
	}
	p := (z*v.grid.Y+y)*v.grid.X + x
	return v.re[p], v.im[p]
}
