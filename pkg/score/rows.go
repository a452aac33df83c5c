package score

import "github.com/ajroetker/go-highway/hwy"

// rowOps bundles the inner-loop primitives so the scalar/SIMD choice is
// made once at Scorer construction. Generic functions cannot be stored
// in package variables, so each Scorer carries its own table.
type rowOps[T hwy.Floats] struct {
	// shiftRow applies per-lane phases to a complex block:
	// dst = (cos + i*sin) * src, lane by lane.
	shiftRow func(sin, cos, srcRe, srcIm, dstRe, dstIm []T)

	// weightedSSD returns sum over lanes of
	// w * ((aRe-bRe)^2 + (aIm-bIm)^2).
	weightedSSD func(aRe, aIm, bRe, bIm, w []T) T

	// diff2Row composes the x-axis phase tables with one fixed (sy, cy)
	// pair, shifts the image row, and returns the squared distance to
	// the reference row. Rows arrive pre-scaled, so no weight appears.
	diff2Row func(sinX, cosX []T, sy, cy T, refRe, refIm, imgRe, imgIm []T) T

	// ccRow accumulates the weighted correlation and reference energy
	// of one shifted row into per-column accumulators.
	ccRow func(sinX, cosX []T, sy, cy T, refRe, refIm, imgRe, imgIm, w, wAcc, nAcc []T)
}

func scalarOps[T hwy.Floats]() rowOps[T] {
	return rowOps[T]{
		shiftRow:    shiftRowScalar[T],
		weightedSSD: weightedSSDScalar[T],
		diff2Row:    diff2RowScalar[T],
		ccRow:       ccRowScalar[T],
	}
}

func shiftRowScalar[T hwy.Floats](sin, cos, srcRe, srcIm, dstRe, dstIm []T) {
	for t := range dstRe {
		dstRe[t] = cos[t]*srcRe[t] - sin[t]*srcIm[t]
		dstIm[t] = cos[t]*srcIm[t] + sin[t]*srcRe[t]
	}
}

func weightedSSDScalar[T hwy.Floats](aRe, aIm, bRe, bIm, w []T) T {
	var sum T
	for t := range aRe {
		dr := aRe[t] - bRe[t]
		di := aIm[t] - bIm[t]
		sum += (dr*dr + di*di) * w[t]
	}
	return sum
}

func diff2RowScalar[T hwy.Floats](sinX, cosX []T, sy, cy T, refRe, refIm, imgRe, imgIm []T) T {
	var sum T
	for x := range sinX {
		ss := sinX[x]*cy + cosX[x]*sy
		cc := cosX[x]*cy - sinX[x]*sy
		sr := cc*imgRe[x] - ss*imgIm[x]
		si := cc*imgIm[x] + ss*imgRe[x]
		dr := refRe[x] - sr
		di := refIm[x] - si
		sum += dr*dr + di*di
	}
	return sum
}

func ccRowScalar[T hwy.Floats](sinX, cosX []T, sy, cy T, refRe, refIm, imgRe, imgIm, w, wAcc, nAcc []T) {
	for x := range sinX {
		ss := sinX[x]*cy + cosX[x]*sy
		cc := cosX[x]*cy - sinX[x]*sy
		sr := cc*imgRe[x] - ss*imgIm[x]
		si := cc*imgIm[x] + ss*imgRe[x]
		wAcc[x] += (refRe[x]*sr + refIm[x]*si) * w[x]
		nAcc[x] += (refRe[x]*refRe[x] + refIm[x]*refIm[x]) * w[x]
	}
}
