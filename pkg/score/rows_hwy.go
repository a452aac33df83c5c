package score

import "github.com/ajroetker/go-highway/hwy"

// Vector row primitives built on the portable highway ops. Full chunks
// use unmasked loads and stores; tails run under a lane mask so short
// rows and odd row lengths stay in bounds. Masked-off weight lanes load
// as zero, which keeps the reductions exact.

func vectorOps[T hwy.Floats]() rowOps[T] {
	return rowOps[T]{
		shiftRow:    shiftRowVec[T],
		weightedSSD: weightedSSDVec[T],
		diff2Row:    diff2RowVec[T],
		ccRow:       ccRowVec[T],
	}
}

func shiftRowVec[T hwy.Floats](sin, cos, srcRe, srcIm, dstRe, dstIm []T) {
	hwy.ProcessWithTail[T](len(dstRe),
		func(off int) {
			vs := hwy.Load(sin[off:])
			vc := hwy.Load(cos[off:])
			vr := hwy.Load(srcRe[off:])
			vi := hwy.Load(srcIm[off:])
			hwy.Store(hwy.Sub(hwy.Mul(vc, vr), hwy.Mul(vs, vi)), dstRe[off:])
			hwy.Store(hwy.FMA(vc, vi, hwy.Mul(vs, vr)), dstIm[off:])
		},
		func(off, count int) {
			mask := hwy.TailMask[T](count)
			vs := hwy.MaskLoad(mask, sin[off:])
			vc := hwy.MaskLoad(mask, cos[off:])
			vr := hwy.MaskLoad(mask, srcRe[off:])
			vi := hwy.MaskLoad(mask, srcIm[off:])
			hwy.MaskStore(mask, hwy.Sub(hwy.Mul(vc, vr), hwy.Mul(vs, vi)), dstRe[off:])
			hwy.MaskStore(mask, hwy.FMA(vc, vi, hwy.Mul(vs, vr)), dstIm[off:])
		})
}

func weightedSSDVec[T hwy.Floats](aRe, aIm, bRe, bIm, w []T) T {
	acc := hwy.Zero[T]()
	hwy.ProcessWithTail[T](len(aRe),
		func(off int) {
			dr := hwy.Sub(hwy.Load(aRe[off:]), hwy.Load(bRe[off:]))
			di := hwy.Sub(hwy.Load(aIm[off:]), hwy.Load(bIm[off:]))
			sq := hwy.FMA(di, di, hwy.Mul(dr, dr))
			acc = hwy.FMA(sq, hwy.Load(w[off:]), acc)
		},
		func(off, count int) {
			mask := hwy.TailMask[T](count)
			dr := hwy.Sub(hwy.MaskLoad(mask, aRe[off:]), hwy.MaskLoad(mask, bRe[off:]))
			di := hwy.Sub(hwy.MaskLoad(mask, aIm[off:]), hwy.MaskLoad(mask, bIm[off:]))
			sq := hwy.FMA(di, di, hwy.Mul(dr, dr))
			acc = hwy.FMA(sq, hwy.MaskLoad(mask, w[off:]), acc)
		})
	return hwy.ReduceSum(acc)
}

func diff2RowVec[T hwy.Floats](sinX, cosX []T, sy, cy T, refRe, refIm, imgRe, imgIm []T) T {
	vsy := hwy.Set(sy)
	vcy := hwy.Set(cy)
	acc := hwy.Zero[T]()
	hwy.ProcessWithTail[T](len(sinX),
		func(off int) {
			vsx := hwy.Load(sinX[off:])
			vcx := hwy.Load(cosX[off:])
			ss := hwy.FMA(vsx, vcy, hwy.Mul(vcx, vsy))
			cc := hwy.Sub(hwy.Mul(vcx, vcy), hwy.Mul(vsx, vsy))
			vir := hwy.Load(imgRe[off:])
			vii := hwy.Load(imgIm[off:])
			sr := hwy.Sub(hwy.Mul(cc, vir), hwy.Mul(ss, vii))
			si := hwy.FMA(cc, vii, hwy.Mul(ss, vir))
			dr := hwy.Sub(hwy.Load(refRe[off:]), sr)
			di := hwy.Sub(hwy.Load(refIm[off:]), si)
			acc = hwy.FMA(dr, dr, acc)
			acc = hwy.FMA(di, di, acc)
		},
		func(off, count int) {
			mask := hwy.TailMask[T](count)
			vsx := hwy.MaskLoad(mask, sinX[off:])
			vcx := hwy.MaskLoad(mask, cosX[off:])
			ss := hwy.FMA(vsx, vcy, hwy.Mul(vcx, vsy))
			cc := hwy.Sub(hwy.Mul(vcx, vcy), hwy.Mul(vsx, vsy))
			vir := hwy.MaskLoad(mask, imgRe[off:])
			vii := hwy.MaskLoad(mask, imgIm[off:])
			sr := hwy.Sub(hwy.Mul(cc, vir), hwy.Mul(ss, vii))
			si := hwy.FMA(cc, vii, hwy.Mul(ss, vir))
			dr := hwy.Sub(hwy.MaskLoad(mask, refRe[off:]), sr)
			di := hwy.Sub(hwy.MaskLoad(mask, refIm[off:]), si)
			// Masked-off lanes have zero ref and zero shifted image,
			// so their squared difference contributes nothing.
			acc = hwy.FMA(dr, dr, acc)
			acc = hwy.FMA(di, di, acc)
		})
	return hwy.ReduceSum(acc)
}

func ccRowVec[T hwy.Floats](sinX, cosX []T, sy, cy T, refRe, refIm, imgRe, imgIm, w, wAcc, nAcc []T) {
	vsy := hwy.Set(sy)
	vcy := hwy.Set(cy)
	hwy.ProcessWithTail[T](len(sinX),
		func(off int) {
			vsx := hwy.Load(sinX[off:])
			vcx := hwy.Load(cosX[off:])
			ss := hwy.FMA(vsx, vcy, hwy.Mul(vcx, vsy))
			cc := hwy.Sub(hwy.Mul(vcx, vcy), hwy.Mul(vsx, vsy))
			vir := hwy.Load(imgRe[off:])
			vii := hwy.Load(imgIm[off:])
			sr := hwy.Sub(hwy.Mul(cc, vir), hwy.Mul(ss, vii))
			si := hwy.FMA(cc, vii, hwy.Mul(ss, vir))
			vrr := hwy.Load(refRe[off:])
			vri := hwy.Load(refIm[off:])
			corr := hwy.FMA(vri, si, hwy.Mul(vrr, sr))
			norm := hwy.FMA(vri, vri, hwy.Mul(vrr, vrr))
			vw := hwy.Load(w[off:])
			hwy.Store(hwy.FMA(corr, vw, hwy.Load(wAcc[off:])), wAcc[off:])
			hwy.Store(hwy.FMA(norm, vw, hwy.Load(nAcc[off:])), nAcc[off:])
		},
		func(off, count int) {
			mask := hwy.TailMask[T](count)
			vsx := hwy.MaskLoad(mask, sinX[off:])
			vcx := hwy.MaskLoad(mask, cosX[off:])
			ss := hwy.FMA(vsx, vcy, hwy.Mul(vcx, vsy))
			cc := hwy.Sub(hwy.Mul(vcx, vcy), hwy.Mul(vsx, vsy))
			vir := hwy.MaskLoad(mask, imgRe[off:])
			vii := hwy.MaskLoad(mask, imgIm[off:])
			sr := hwy.Sub(hwy.Mul(cc, vir), hwy.Mul(ss, vii))
			si := hwy.FMA(cc, vii, hwy.Mul(ss, vir))
			vrr := hwy.MaskLoad(mask, refRe[off:])
			vri := hwy.MaskLoad(mask, refIm[off:])
			corr := hwy.FMA(vri, si, hwy.Mul(vrr, sr))
			norm := hwy.FMA(vri, vri, hwy.Mul(vrr, vrr))
			vw := hwy.MaskLoad(mask, w[off:])
			hwy.MaskStore(mask, hwy.FMA(corr, vw, hwy.MaskLoad(mask, wAcc[off:])), wAcc[off:])
			hwy.MaskStore(mask, hwy.FMA(norm, vw, hwy.MaskLoad(mask, nAcc[off:])), nAcc[off:])
		})
}
