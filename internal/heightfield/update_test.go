package heightfield

import (
	"math"
	"testing"
)

func TestActivationLevel_Rounding(t *testing.T) {
	tests := []struct {
		err, base float32
		want      int
	}{
		{0.5, 1, -1},
		{1, 1, 0},
		{1.41, 1, 0},   // log2 = 0.496
		{1.42, 1, 1},   // log2 = 0.506
		{2, 1, 1},
		{181, 64, 1},   // log2 = 1.49985
		{182, 64, 2},   // log2 = 1.50779
		{3, 1, 2},
		{5.6, 1, 2},    // log2 = 2.485
		{5.7, 1, 3},    // log2 = 2.511
		{1e9, 1, MaxLevel},
	}

	for _, tt := range tests {
		if got := ActivationLevel(tt.err, tt.base); got != tt.want {
			t.Errorf("ActivationLevel(%v, %v): expected %d, got %d", tt.err, tt.base, tt.want, got)
		}
	}
}

func TestActivationLevel_HalfLevelBoundary(t *testing.T) {
	sqrt2 := float32(math.Sqrt2) // 1.41421354, just below the real root
	below := math.Nextafter32(sqrt2, 0)
	above := math.Nextafter32(sqrt2, 2)

	tests := []struct {
		err, base float32
		want      int
	}{
		// log2 rounds to 0.49999997 in float32, and adding 0.5 rounds up to 1.
		{sqrt2, 1, 1},
		{below, 1, 0},
		{above, 1, 1},
		{2 * sqrt2, 1, 2},
		{math.Nextafter32(2*sqrt2, 0), 1, 1},
		{64 * sqrt2, 64, 1},
	}

	for _, tt := range tests {
		if got := ActivationLevel(tt.err, tt.base); got != tt.want {
			t.Errorf("ActivationLevel(%v, %v): expected %d, got %d", tt.err, tt.base, tt.want, got)
		}
	}
}

// singleBump returns a 3x3 grid that is zero everywhere except the center.
func singleBump(e float32) *testGrid {
	return newTestGrid(3, 3, func(x, z int) float32 {
		if x == 1 && z == 1 {
			return e
		}
		return 0
	})
}

func TestUpdate_SingleVertexRounding(t *testing.T) {
	tests := []struct {
		e, base float32
		want    int
	}{
		{181, 64, 1},
		{182, 64, 2},
		{63, 64, -1},
		{64, 64, 0},
		{90, 64, 0},
		{91, 64, 1},
	}

	for _, tt := range tests {
		hf := newTestHeightfield(t, singleBump(tt.e), 1)
		hf.Update(tt.base)

		if got := hf.Level(1, 1); got != tt.want {
			t.Errorf("error %v, base %v: expected level %d, got %d", tt.e, tt.base, tt.want, got)
		}
		for _, p := range [][2]int{{1, 0}, {0, 1}, {2, 1}, {1, 2}, {0, 0}, {2, 2}} {
			if got := hf.Level(p[0], p[1]); got != -1 {
				t.Errorf("vertex %v: expected unset, got %d", p, got)
			}
		}
	}
}

func TestUpdate_VerticalScaleAppliesToError(t *testing.T) {
	// Stored height 100 / 0.25 = 400; error back in meters = 100.
	g := singleBump(100)
	hf, err := New(g, Options{TreeDepth: 1, VerticalScale: 0.25, InputVerticalScale: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer hf.Close()

	hf.Update(25)
	if got := hf.Level(1, 1); got != 2 {
		t.Errorf("expected level 2 for error 100 / base 25, got %d", got)
	}
}

func TestUpdate_FlatTerrain(t *testing.T) {
	hf := newTestHeightfield(t, newTestGrid(9, 9, func(x, z int) float32 { return 100 }), 2)
	hf.Update(1)
	hf.Propagate()

	for z := 0; z < 9; z++ {
		for x := 0; x < 9; x++ {
			if got := hf.Level(x, z); got != -1 {
				t.Errorf("vertex (%d, %d): expected -1 on flat terrain, got %d", x, z, got)
			}
		}
	}
	if hf.ActivatedVertices() != 0 {
		t.Errorf("expected no activated vertices, got %d", hf.ActivatedVertices())
	}
}

func TestUpdate_PlaneNeedsNoVertices(t *testing.T) {
	hf := newTestHeightfield(t, newTestGrid(17, 17, func(x, z int) float32 { return float32(3*x + 5*z) }), 2)
	hf.Update(0.5)

	if hf.ActivatedVertices() != 0 {
		t.Errorf("expected a plane to need no vertices, got %d", hf.ActivatedVertices())
	}
}

func TestUpdate_Deterministic(t *testing.T) {
	a := newTestHeightfield(t, randomGrid(17, 7), 3)
	b := newTestHeightfield(t, randomGrid(17, 7), 3)
	a.Update(2)
	b.Update(2)

	for z := 0; z < 17; z++ {
		for x := 0; x < 17; x++ {
			if a.Level(x, z) != b.Level(x, z) {
				t.Fatalf("vertex (%d, %d): levels differ between runs", x, z)
			}
		}
	}
}
