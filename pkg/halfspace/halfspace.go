// Package halfspace provides frequency-coordinate addressing for Fourier
// data stored in a half-space (Hermitian) layout. A real-valued image's
// transform is stored only over the non-negative half of the column axis;
// the row axis (and depth axis for 3D data) keeps its full extent, with
// indices beyond the resolution cutoff standing in for negative
// frequencies of the mirrored, conjugated entry.
package halfspace

// Grid describes the storage layout of one half-space image.
type Grid struct {
	// X is the stored extent of the column axis (non-negative half only),
	// typically fullWidth/2+1 for data produced by a real-input FFT.
	X int

	// Y is the full extent of the row axis.
	Y int

	// Z is the full extent of the depth axis, or 1 for 2D data.
	Z int

	// MaxR is the resolution cutoff. Row and depth indices above MaxR
	// represent negative frequencies once they reach the wrapped mirror
	// of the cutoff; indices strictly between the cutoff and its mirror
	// carry no stored signal beyond the single column at MaxR.
	MaxR int
}

// Grid2D returns a grid for a 2D half-space image.
func Grid2D(x, y, maxR int) Grid {
	return Grid{X: x, Y: y, Z: 1, MaxR: maxR}
}

// Grid3D returns a grid for a 3D half-space image.
func Grid3D(x, y, z, maxR int) Grid {
	return Grid{X: x, Y: y, Z: z, MaxR: maxR}
}

// Is3D reports whether the grid has a depth axis.
func (g Grid) Is3D() bool {
	return g.Z > 1
}

// Pixels returns the number of stored values per component array.
func (g Grid) Pixels() int {
	return g.X * g.Y * g.Z
}

// Coords2D decomposes a linear pixel index into (x, y) frequency
// coordinates. The row coordinate wraps to its negative frequency as soon
// as it exceeds the cutoff; the column coordinate is never wrapped.
func (g Grid) Coords2D(pixel int) (x, y int) {
	x = pixel % g.X
	y = pixel / g.X
	if y > g.MaxR {
		y -= g.Y
	}
	return x, y
}

// Coords3D decomposes a linear pixel index into (x, y, z) frequency
// coordinates, wrapping the row and depth coordinates past the cutoff.
func (g Grid) Coords3D(pixel int) (x, y, z int) {
	z = pixel / (g.X * g.Y)
	xy := pixel % (g.X * g.Y)
	x = xy % g.X
	y = xy / g.X
	if y > g.MaxR {
		y -= g.Y
	}
	if z > g.MaxR {
		z -= g.Z
	}
	return x, y, z
}

// RowY maps a row index to the coordinate and column span a row-by-row
// traversal should use. Rows at or beyond Y-MaxR wrap to their negative
// frequency with the full span. Rows strictly between MaxR and Y-MaxR lie
// in the masked band where only the single column at MaxR is visited;
// banded reports that case, and the coordinate stays unwrapped there.
func (g Grid) RowY(iy int) (y, x0, x1 int, banded bool) {
	y, x0, x1 = iy, 0, g.X
	if iy > g.MaxR {
		if iy >= g.Y-g.MaxR {
			y = iy - g.Y
		} else {
			x0, x1 = g.MaxR, g.MaxR+1
			banded = true
		}
	}
	return y, x0, x1, banded
}

// PlaneZ is RowY for the depth axis.
func (g Grid) PlaneZ(iz int) (z, x0, x1 int, banded bool) {
	z, x0, x1 = iz, 0, g.X
	if iz > g.MaxR {
		if iz >= g.Z-g.MaxR {
			z = iz - g.Z
		} else {
			x0, x1 = g.MaxR, g.MaxR+1
			banded = true
		}
	}
	return z, x0, x1, banded
}
