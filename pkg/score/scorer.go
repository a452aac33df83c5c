package score

import (
	"math"

	"github.com/ajroetker/go-highway/hwy"

	"cryomatch/pkg/halfspace"
	"cryomatch/pkg/phase"
	"cryomatch/pkg/projector"
)

// Scorer evaluates the similarity kernels for one mode, projector and
// precision. It owns reusable scratch buffers, so a Scorer must not be
// shared between goroutines; concurrent sweeps create one per worker and
// split the work so output ranges stay disjoint.
type Scorer[T hwy.Floats] struct {
	mode    Mode
	data3D  bool
	grid    halfspace.Grid
	project func(x, y, z int, rot []T) (re, im T)
	tune    tuning
	ops     rowOps[T]
	scratch scratch[T]
}

// NewScorer builds a scorer over the projector's grid. The zero Tuning
// picks defaults for the host CPU.
func NewScorer[T hwy.Floats](mode Mode, proj *projector.Projector[T], tune Tuning) *Scorer[T] {
	s := &Scorer[T]{
		mode:   mode,
		data3D: mode == ModeData3D,
		grid:   proj.Grid,
		tune:   tune.resolve(),
	}
	switch mode {
	case ModeRef3D:
		slice := proj.ProjectSlice
		s.project = func(x, y, _ int, rot []T) (T, T) { return slice(x, y, rot) }
	case ModeData3D:
		s.project = proj.Project3D
	default:
		flat := proj.Project2D
		s.project = func(x, y, _ int, rot []T) (T, T) { return flat(x, y, rot) }
	}
	if s.tune.vector {
		s.ops = vectorOps[T]()
	} else {
		s.ops = scalarOps[T]()
	}
	return s
}

// Mode returns the dimensionality the scorer was built for.
func (s *Scorer[T]) Mode() Mode { return s.mode }

// Grid returns the frequency layout the scorer operates on.
func (s *Scorer[T]) Grid() halfspace.Grid { return s.grid }

func (s *Scorer[T]) buildTables(trans Translations[T]) {
	if s.data3D {
		s.scratch.tables.Build3D(trans.X, trans.Y, trans.Z, s.grid.X, s.grid.Y, s.grid.Z)
		return
	}
	s.scratch.tables.Build2D(trans.X, trans.Y, s.grid.X, s.grid.Y)
}

// forEachRow walks every stored row in memory order, reporting its
// signed coordinates and the column span the row kernels score. Rows in
// the wrap band get their negative coordinate; rows between the cutoff
// and the wrap band keep the raw coordinate and shrink to the single
// guard column, inheriting the plane's span when the plane itself is
// restricted.
func forEachRow(g halfspace.Grid, data3D bool, fn func(rowBase, y, z, x0, x1 int)) {
	if !data3D {
		for iy := 0; iy < g.Y; iy++ {
			y, x0, x1, _ := g.RowY(iy)
			fn(iy*g.X, y, 0, x0, x1)
		}
		return
	}
	for iz := 0; iz < g.Z; iz++ {
		z, zx0, zx1, _ := g.PlaneZ(iz)
		for iy := 0; iy < g.Y; iy++ {
			y, x0, x1, banded := g.RowY(iy)
			if !banded {
				x0, x1 = zx0, zx1
			}
			fn((iz*g.Y+iy)*g.X, y, z, x0, x1)
		}
	}
}

func sqrtT[T hwy.Floats](v T) T {
	return T(math.Sqrt(float64(v)))
}

func grow[E any](s []E, n int) []E {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]E, n)
}

// scratch holds the per-scorer working memory. Buffers grow on demand
// and are reused across calls, so steady-state kernel calls allocate
// nothing.
type scratch[T hwy.Floats] struct {
	tables phase.Tables[T]

	// dense-kernel state
	xs, ys, zs       []int
	wHalf            []T
	refRe, refIm     []T
	laneSin, laneCos []T
	shiftRe, shiftIm []T
	batchAcc         []T

	// row-kernel state
	rowRefRe, rowRefIm []T
	rowImgRe, rowImgIm []T
	jobAcc             []T
	wAcc, nAcc         []T
}

func (sc *scratch[T]) ensureCoords(g halfspace.Grid, data3D bool) {
	n := g.Pixels()
	if len(sc.xs) == n {
		return
	}
	sc.xs = grow(sc.xs, n)
	sc.ys = grow(sc.ys, n)
	if data3D {
		sc.zs = grow(sc.zs, n)
		for p := 0; p < n; p++ {
			sc.xs[p], sc.ys[p], sc.zs[p] = g.Coords3D(p)
		}
		return
	}
	for p := 0; p < n; p++ {
		sc.xs[p], sc.ys[p] = g.Coords2D(p)
	}
}

func (sc *scratch[T]) ensureDense(nTrans int, t tuning) {
	refs := t.orientBlock * t.blockSize
	sc.refRe = grow(sc.refRe, refs)
	sc.refIm = grow(sc.refIm, refs)
	sc.laneSin = grow(sc.laneSin, t.blockSize)
	sc.laneCos = grow(sc.laneCos, t.blockSize)
	sc.shiftRe = grow(sc.shiftRe, t.blockSize)
	sc.shiftIm = grow(sc.shiftIm, t.blockSize)
	sc.batchAcc = grow(sc.batchAcc, nTrans*t.orientBlock)
}

func (sc *scratch[T]) ensureRows(g halfspace.Grid) {
	sc.rowRefRe = grow(sc.rowRefRe, g.X)
	sc.rowRefIm = grow(sc.rowRefIm, g.X)
	sc.rowImgRe = grow(sc.rowImgRe, g.X)
	sc.rowImgIm = grow(sc.rowImgIm, g.X)
}

func (sc *scratch[T]) ensureCC(nTrans, xDim int) {
	sc.wAcc = grow(sc.wAcc, nTrans*xDim)
	sc.nAcc = grow(sc.nAcc, nTrans*xDim)
}
