package score

import "golang.org/x/sys/cpu"

// VectorMode controls whether the row primitives run on the SIMD path.
type VectorMode int

const (
	// VectorAuto uses the SIMD path when the host CPU advertises
	// vector extensions, the scalar path otherwise.
	VectorAuto VectorMode = iota

	// VectorOn forces the SIMD path.
	VectorOn

	// VectorOff forces the scalar path.
	VectorOff
)

// Tuning adjusts kernel blocking and vector selection. The zero value
// picks defaults suited to the host CPU.
type Tuning struct {
	// BlockSize is the pixel tile length of the dense diff2 kernel.
	// Larger tiles amortize the phase-table gather, smaller ones keep
	// the per-orientation reference blocks in cache.
	BlockSize int

	// OrientBlock is how many orientations share one pass over the
	// image pixels in the dense kernels.
	OrientBlock int

	// Vector selects scalar or SIMD row primitives.
	Vector VectorMode
}

type tuning struct {
	blockSize   int
	orientBlock int
	vector      bool
}

var hasSIMD = cpu.X86.HasAVX512F || cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

func (t Tuning) resolve() tuning {
	r := tuning{blockSize: t.BlockSize, orientBlock: t.OrientBlock}
	if r.blockSize <= 0 {
		switch {
		case cpu.X86.HasAVX512F:
			r.blockSize = 64
		case cpu.X86.HasAVX2:
			r.blockSize = 32
		default:
			r.blockSize = 16
		}
	}
	if r.orientBlock <= 0 {
		r.orientBlock = 8
	}
	switch t.Vector {
	case VectorOn:
		r.vector = true
	case VectorOff:
		r.vector = false
	default:
		r.vector = hasSIMD
	}
	return r
}
