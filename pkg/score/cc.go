package score

import (
	"cryomatch/pkg/orient"
	"cryomatch/pkg/phase"
)

// CCCoarse scores every orientation against every translation with the
// negative normalized cross-correlation, -corr/sqrt(refEnergy), and adds
// the results into out[iorient*nTrans+itrans]. The metric is invariant
// to rescaling the weights by a positive constant; a pair whose weighted
// reference energy is zero contributes nothing.
func (s *Scorer[T]) CCCoarse(orients orient.Set[T], img Image[T], trans Translations[T], out []T) {
	nTrans := trans.Len()
	sc := &s.scratch

	s.buildTables(trans)
	sc.ensureRows(s.grid)
	sc.ensureCC(nTrans, s.grid.X)

	for io := 0; io < orients.Len(); io++ {
		clear(sc.wAcc[:nTrans*s.grid.X])
		clear(sc.nAcc[:nTrans*s.grid.X])
		s.ccRows(orients.At(io), img, nTrans)
		base := io * nTrans
		for it := 0; it < nTrans; it++ {
			out[base+it] += s.reduceCC(it)
		}
	}
}

// CCFine scores the job list's pairs with the negative normalized
// cross-correlation, adding into out[Start[j]+k]. No baseline applies:
// the image self-term drops out of the normalized metric.
func (s *Scorer[T]) CCFine(orients orient.Set[T], img Image[T], trans Translations[T], jobs JobList, out []T) {
	sc := &s.scratch
	sc.ensureRows(s.grid)
	for j := range jobs.Start {
		first, count := jobs.Start[j], jobs.Count[j]
		rot := orients.At(jobs.Rot[first])
		t0 := jobs.Trans[first]
		s.buildTables(trans.Slice(t0, t0+count))

		sc.ensureCC(count, s.grid.X)
		clear(sc.wAcc[:count*s.grid.X])
		clear(sc.nAcc[:count*s.grid.X])
		s.ccRows(rot, img, count)
		for k := 0; k < count; k++ {
			out[first+k] += s.reduceCC(k)
		}
	}
}

// ccRows accumulates the weighted correlation and reference energy of
// one orientation into per-column accumulators, one lane set per
// translation. Reducing per column rather than per pixel keeps the row
// primitive free of horizontal operations.
func (s *Scorer[T]) ccRows(rot []T, img Image[T], nTrans int) {
	sc := &s.scratch
	xDim := s.grid.X
	forEachRow(s.grid, s.data3D, func(rowBase, y, z, x0, x1 int) {
		for x := x0; x < x1; x++ {
			sc.rowRefRe[x], sc.rowRefIm[x] = s.project(x, y, z, rot)
		}
		for it := 0; it < nTrans; it++ {
			sy, cy := sc.tables.LookupY(it, y)
			if s.data3D {
				sz, cz := sc.tables.LookupZ(it, z)
				sy, cy = phase.Compose(sy, cy, sz, cz)
			}
			sinX, cosX := sc.tables.RowX(it)
			s.ops.ccRow(sinX[x0:x1], cosX[x0:x1], sy, cy,
				sc.rowRefRe[x0:x1], sc.rowRefIm[x0:x1],
				img.Real[rowBase+x0:rowBase+x1], img.Imag[rowBase+x0:rowBase+x1],
				img.Weight[rowBase+x0:rowBase+x1],
				sc.wAcc[it*xDim+x0:it*xDim+x1], sc.nAcc[it*xDim+x0:it*xDim+x1])
		}
	})
}

func (s *Scorer[T]) reduceCC(it int) T {
	sc := &s.scratch
	xDim := s.grid.X
	var sumW, sumN T
	for x := 0; x < xDim; x++ {
		sumW += sc.wAcc[it*xDim+x]
		sumN += sc.nAcc[it*xDim+x]
	}
	if sumN <= 0 {
		return 0
	}
	return -sumW / sqrtT(sumN)
}
