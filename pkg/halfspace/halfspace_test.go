package halfspace

import "testing"

func TestCoords2DWrapsRowsPastCutoff(t *testing.T) {
	// 9x16 grid as produced by a 16-wide real FFT, cutoff 6.
	g := Grid2D(9, 16, 6)

	testCases := []struct {
		pixel int
		wantX int
		wantY int
	}{
		{0, 0, 0},
		{8, 8, 0},
		{9, 0, 1},
		{6*9 + 3, 3, 6},    // row at the cutoff stays positive
		{7 * 9, 0, 7 - 16}, // first row past the cutoff wraps
		{15*9 + 8, 8, -1},  // last row is frequency -1
	}

	for _, tc := range testCases {
		x, y := g.Coords2D(tc.pixel)
		if x != tc.wantX || y != tc.wantY {
			t.Errorf("Coords2D(%d): expected (%d,%d), got (%d,%d)",
				tc.pixel, tc.wantX, tc.wantY, x, y)
		}
	}
}

func TestCoords2DMatchesIndexMinusExtent(t *testing.T) {
	g := Grid2D(5, 8, 3)

	// Every row index beyond the cutoff must map to index minus extent.
	for iy := g.MaxR + 1; iy < g.Y; iy++ {
		_, y := g.Coords2D(iy * g.X)
		if y != iy-g.Y {
			t.Errorf("row %d: expected frequency %d, got %d", iy, iy-g.Y, y)
		}
	}
	for iy := 0; iy <= g.MaxR; iy++ {
		_, y := g.Coords2D(iy * g.X)
		if y != iy {
			t.Errorf("row %d: expected unwrapped frequency %d, got %d", iy, iy, y)
		}
	}
}

func TestCoords3DWrapsDepth(t *testing.T) {
	g := Grid3D(5, 8, 8, 3)

	testCases := []struct {
		pixel int
		wantX int
		wantY int
		wantZ int
	}{
		{0, 0, 0, 0},
		{5*8*3 + 5*2 + 4, 4, 2, 3},
		{5 * 8 * 5, 0, 0, 5 - 8},
		{5*8*7 + 5*7 + 1, 1, -1, -1},
	}

	for _, tc := range testCases {
		x, y, z := g.Coords3D(tc.pixel)
		if x != tc.wantX || y != tc.wantY || z != tc.wantZ {
			t.Errorf("Coords3D(%d): expected (%d,%d,%d), got (%d,%d,%d)",
				tc.pixel, tc.wantX, tc.wantY, tc.wantZ, x, y, z)
		}
	}
}

func TestRowYSpans(t *testing.T) {
	g := Grid2D(9, 16, 6)

	testCases := []struct {
		iy         int
		wantY      int
		wantX0     int
		wantX1     int
		wantBanded bool
	}{
		{0, 0, 0, 9, false},
		{6, 6, 0, 9, false},        // at the cutoff: full span
		{7, 7, 6, 7, true},         // masked band: one column, unwrapped
		{9, 9, 6, 7, true},         // last masked row
		{10, 10 - 16, 0, 9, false}, // wrapped mirror of the cutoff
		{15, -1, 0, 9, false},
	}

	for _, tc := range testCases {
		y, x0, x1, banded := g.RowY(tc.iy)
		if y != tc.wantY || x0 != tc.wantX0 || x1 != tc.wantX1 || banded != tc.wantBanded {
			t.Errorf("RowY(%d): expected (%d,%d,%d,%v), got (%d,%d,%d,%v)",
				tc.iy, tc.wantY, tc.wantX0, tc.wantX1, tc.wantBanded, y, x0, x1, banded)
		}
	}
}

func TestPlaneZSpans(t *testing.T) {
	g := Grid3D(5, 8, 8, 2)

	testCases := []struct {
		iz         int
		wantZ      int
		wantBanded bool
	}{
		{0, 0, false},
		{2, 2, false},
		{3, 3, true},
		{5, 5, true},
		{6, -2, false},
		{7, -1, false},
	}

	for _, tc := range testCases {
		z, x0, x1, banded := g.PlaneZ(tc.iz)
		if z != tc.wantZ || banded != tc.wantBanded {
			t.Errorf("PlaneZ(%d): expected z=%d banded=%v, got z=%d banded=%v",
				tc.iz, tc.wantZ, tc.wantBanded, z, banded)
		}
		if banded && (x0 != g.MaxR || x1 != g.MaxR+1) {
			t.Errorf("PlaneZ(%d): expected span [%d,%d), got [%d,%d)",
				tc.iz, g.MaxR, g.MaxR+1, x0, x1)
		}
	}
}

func TestPixels(t *testing.T) {
	if got := Grid2D(9, 16, 6).Pixels(); got != 144 {
		t.Errorf("Expected 144 pixels, got %d", got)
	}
	if got := Grid3D(5, 8, 8, 3).Pixels(); got != 320 {
		t.Errorf("Expected 320 pixels, got %d", got)
	}
	if Grid2D(9, 16, 6).Is3D() {
		t.Error("Expected 2D grid to report Is3D=false")
	}
	if !Grid3D(5, 8, 8, 3).Is3D() {
		t.Error("Expected 3D grid to report Is3D=true")
	}
}
