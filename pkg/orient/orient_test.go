package orient

import (
	"math"
	"testing"
)

func TestZYZZeroAnglesIsIdentity(t *testing.T) {
	m := ZYZ(0, 0, 0)
	want := Identity()
	for i := range m {
		if math.Abs(m[i]-want[i]) > 1e-15 {
			t.Errorf("entry %d: expected %g, got %g", i, want[i], m[i])
		}
	}
}

func TestZYZIsOrthonormal(t *testing.T) {
	angles := [][3]float64{
		{0.3, 0.0, 0.0},
		{0.0, 1.1, 0.0},
		{0.7, -0.4, 2.2},
		{-1.9, 0.6, 0.25},
	}

	for _, a := range angles {
		m := ZYZ(a[0], a[1], a[2])

		// R times its transpose must be the identity.
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				sum := 0.0
				for k := 0; k < 3; k++ {
					sum += m[i*3+k] * m[j*3+k]
				}
				want := 0.0
				if i == j {
					want = 1.0
				}
				if math.Abs(sum-want) > 1e-12 {
					t.Errorf("angles %v: (R·Rᵀ)[%d][%d] = %g, expected %g",
						a, i, j, sum, want)
				}
			}
		}
	}
}

func TestZYZRotatesBasisVector(t *testing.T) {
	// A quarter turn about z maps the x axis onto the y axis.
	m := ZYZ(math.Pi/2, 0, 0)
	x := applyRotation(m, [3]float64{1, 0, 0})

	want := [3]float64{0, 1, 0}
	for i := range x {
		if math.Abs(x[i]-want[i]) > 1e-12 {
			t.Errorf("component %d: expected %g, got %g", i, want[i], x[i])
		}
	}

	// A quarter tilt about y maps the z axis onto the x axis.
	m = ZYZ(0, math.Pi/2, 0)
	z := applyRotation(m, [3]float64{0, 0, 1})
	want = [3]float64{1, 0, 0}
	for i := range z {
		if math.Abs(z[i]-want[i]) > 1e-12 {
			t.Errorf("tilt component %d: expected %g, got %g", i, want[i], z[i])
		}
	}
}

func TestSetAppendAndViews(t *testing.T) {
	s := FromAngles[float32]([][3]float64{
		{0, 0, 0},
		{0.5, 0.25, -0.75},
	})
	if s.Len() != 2 {
		t.Errorf("Expected 2 orientations, got %d", s.Len())
	}

	id := s.At(0)
	if id[0] != 1 || id[4] != 1 || id[8] != 1 || id[1] != 0 {
		t.Errorf("Expected identity in slot 0, got %v", id)
	}

	s = s.Append(Identity())
	if s.Len() != 3 {
		t.Errorf("Expected 3 orientations after append, got %d", s.Len())
	}

	sub := s.Slice(1, 3)
	if sub.Len() != 2 {
		t.Errorf("Expected sliced set length 2, got %d", sub.Len())
	}
	if &sub.At(0)[0] != &s.At(1)[0] {
		t.Error("Expected Slice to share the backing array")
	}
}

func applyRotation(m [9]float64, v [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = m[i*3]*v[0] + m[i*3+1]*v[1] + m[i*3+2]*v[2]
	}
	return out
}
