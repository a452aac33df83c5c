package score

import (
	"cryomatch/pkg/orient"
	"cryomatch/pkg/phase"
)

// Diff2Coarse scores every orientation against every translation with
// the summed weighted squared difference and adds the results into
// out[iorient*nTrans+itrans]. out must hold orients.Len()*trans.Len()
// values and is only ever added to.
//
// The kernel tiles the image into pixel blocks. For each block it
// projects the current orientation batch once, then phase-shifts the
// image block once per translation and reuses the shifted values across
// the whole batch. Batch scores accumulate privately and are flushed to
// out when the batch finishes, so out is touched once per orientation
// batch.
func (s *Scorer[T]) Diff2Coarse(orients orient.Set[T], img Image[T], trans Translations[T], out []T) {
	n := s.grid.Pixels()
	nTrans := trans.Len()
	nOrient := orients.Len()
	sc := &s.scratch

	s.buildTables(trans)
	sc.ensureCoords(s.grid, s.data3D)
	sc.ensureDense(nTrans, s.tune)
	sc.wHalf = grow(sc.wHalf, n)
	half := 0.5 // variable: untyped 0.5 does not convert to T (hwy.Floats includes the half-float lane types)
	for p := 0; p < n; p++ {
		sc.wHalf[p] = img.Weight[p] * T(half)
	}

	bs := s.tune.blockSize
	for o0 := 0; o0 < nOrient; o0 += s.tune.orientBlock {
		oCount := min(s.tune.orientBlock, nOrient-o0)
		acc := sc.batchAcc[:nTrans*oCount]
		clear(acc)

		for p0 := 0; p0 < n; p0 += bs {
			pCount := min(bs, n-p0)
			for j := 0; j < oCount; j++ {
				s.projectBlock(orients.At(o0+j), p0, pCount,
					sc.refRe[j*bs:j*bs+pCount], sc.refIm[j*bs:j*bs+pCount])
			}
			for it := 0; it < nTrans; it++ {
				s.gatherPhases(it, p0, pCount)
				s.ops.shiftRow(sc.laneSin[:pCount], sc.laneCos[:pCount],
					img.Real[p0:p0+pCount], img.Imag[p0:p0+pCount],
					sc.shiftRe[:pCount], sc.shiftIm[:pCount])
				for j := 0; j < oCount; j++ {
					acc[it*oCount+j] += s.ops.weightedSSD(
						sc.refRe[j*bs:j*bs+pCount], sc.refIm[j*bs:j*bs+pCount],
						sc.shiftRe[:pCount], sc.shiftIm[:pCount],
						sc.wHalf[p0:p0+pCount])
				}
			}
		}

		for j := 0; j < oCount; j++ {
			row := out[(o0+j)*nTrans : (o0+j+1)*nTrans]
			for it := 0; it < nTrans; it++ {
				row[it] += acc[it*oCount+j]
			}
		}
	}
}

// projectBlock evaluates the reference for one orientation over the
// pixel block [p0, p0+count) using the cached signed coordinates.
func (s *Scorer[T]) projectBlock(rot []T, p0, count int, dstRe, dstIm []T) {
	sc := &s.scratch
	if s.data3D {
		for t := 0; t < count; t++ {
			dstRe[t], dstIm[t] = s.project(sc.xs[p0+t], sc.ys[p0+t], sc.zs[p0+t], rot)
		}
		return
	}
	for t := 0; t < count; t++ {
		dstRe[t], dstIm[t] = s.project(sc.xs[p0+t], sc.ys[p0+t], 0, rot)
	}
}

// gatherPhases composes the per-axis table entries of one translation
// into per-lane (sin, cos) pairs for the pixel block [p0, p0+count).
func (s *Scorer[T]) gatherPhases(itrans, p0, count int) {
	sc := &s.scratch
	sinX, cosX := sc.tables.RowX(itrans)
	if s.data3D {
		for t := 0; t < count; t++ {
			x := sc.xs[p0+t]
			sy, cy := sc.tables.LookupY(itrans, sc.ys[p0+t])
			ss, cc := phase.Compose(sinX[x], cosX[x], sy, cy)
			sz, cz := sc.tables.LookupZ(itrans, sc.zs[p0+t])
			sc.laneSin[t], sc.laneCos[t] = phase.Compose(ss, cc, sz, cz)
		}
		return
	}
	for t := 0; t < count; t++ {
		x := sc.xs[p0+t]
		sy, cy := sc.tables.LookupY(itrans, sc.ys[p0+t])
		sc.laneSin[t], sc.laneCos[t] = phase.Compose(sinX[x], cosX[x], sy, cy)
	}
}
