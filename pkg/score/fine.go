package score

import (
	"cryomatch/pkg/orient"
	"cryomatch/pkg/phase"
)

// Diff2Fine scores the job list's sparse pairs with the summed weighted
// squared difference, adding score plus baseline into out[Start[j]+k].
// The baseline carries any constant term the caller wants folded into
// every pair, typically the image power above the frequency cutoff.
//
// Each job projects its orientation once per stored row; the weight is
// folded into both operands as sqrt(w/2) so the translation loop runs a
// plain squared distance over the row.
func (s *Scorer[T]) Diff2Fine(orients orient.Set[T], img Image[T], trans Translations[T], jobs JobList, baseline T, out []T) {
	sc := &s.scratch
	sc.ensureRows(s.grid)
	for j := range jobs.Start {
		first, count := jobs.Start[j], jobs.Count[j]
		rot := orients.At(jobs.Rot[first])
		t0 := jobs.Trans[first]
		s.buildTables(trans.Slice(t0, t0+count))

		sc.jobAcc = grow(sc.jobAcc, count)
		acc := sc.jobAcc[:count]
		clear(acc)

		forEachRow(s.grid, s.data3D, func(rowBase, y, z, x0, x1 int) {
			s.prepRow(rot, img, rowBase, y, z, x0, x1)
			for k := 0; k < count; k++ {
				sy, cy := sc.tables.LookupY(k, y)
				if s.data3D {
					sz, cz := sc.tables.LookupZ(k, z)
					sy, cy = phase.Compose(sy, cy, sz, cz)
				}
				sinX, cosX := sc.tables.RowX(k)
				acc[k] += s.ops.diff2Row(sinX[x0:x1], cosX[x0:x1], sy, cy,
					sc.rowRefRe[x0:x1], sc.rowRefIm[x0:x1],
					sc.rowImgRe[x0:x1], sc.rowImgIm[x0:x1])
			}
		})

		for k := 0; k < count; k++ {
			out[first+k] += acc[k] + baseline
		}
	}
}

// prepRow projects one reference row and folds the halved weight into
// both operands, scaling reference and image by sqrt(w/2).
func (s *Scorer[T]) prepRow(rot []T, img Image[T], rowBase, y, z, x0, x1 int) {
	sc := &s.scratch
	half := 0.5 // variable: untyped 0.5 does not convert to T (hwy.Floats includes the half-float lane types)
	for x := x0; x < x1; x++ {
		re, im := s.project(x, y, z, rot)
		h := sqrtT(img.Weight[rowBase+x] * T(half))
		sc.rowRefRe[x] = re * h
		sc.rowRefIm[x] = im * h
		sc.rowImgRe[x] = img.Real[rowBase+x] * h
		sc.rowImgIm[x] = img.Imag[rowBase+x] * h
	}
}
