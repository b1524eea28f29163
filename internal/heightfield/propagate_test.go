package heightfield

import (
	"fmt"
	"testing"
)

// checkPropagation re-derives activation dependencies bottom-up for the cell
// centered at (cx, cz) with half-size 2^level. It returns the highest level
// found in the cell and appends a message for every violated dependency.
func checkPropagation(hf *Heightfield, cx, cz, level int, violations *[]string) int {
	half := 1 << level
	quarter := half >> 1

	cne, cnw, csw, cse := -1, -1, -1, -1
	if level > 0 {
		cne = checkPropagation(hf, cx+quarter, cz-quarter, level-1, violations)
		cnw = checkPropagation(hf, cx-quarter, cz-quarter, level-1, violations)
		csw = checkPropagation(hf, cx-quarter, cz+quarter, level-1, violations)
		cse = checkPropagation(hf, cx+quarter, cz+quarter, level-1, violations)
	}

	ee := hf.Level(cx+half, cz)
	en := hf.Level(cx, cz-half)
	ew := hf.Level(cx-half, cz)
	es := hf.Level(cx, cz+half)

	fail := func(edge string, got int) {
		*violations = append(*violations, fmt.Sprintf("%s edge of cell (%d, %d) level %d has %d", edge, cx, cz, level, got))
	}
	if level > 0 {
		if cne > ee || cse > ee {
			fail("east", ee)
		}
		if cne > en || cnw > en {
			fail("north", en)
		}
		if cnw > ew || csw > ew {
			fail("west", ew)
		}
		if csw > es || cse > es {
			fail("south", es)
		}
	}

	c := hf.Level(cx, cz)
	maxEdge := max(ee, en, es, ew)
	if maxEdge > c {
		*violations = append(*violations, fmt.Sprintf("center (%d, %d) level %d has %d, edges need %d", cx, cz, level, c, maxEdge))
	}

	return max(maxEdge, c)
}

func propagationViolations(hf *Heightfield) []string {
	var violations []string
	c := hf.Size() >> 1
	checkPropagation(hf, c, c, hf.LogSize()-1, &violations)
	return violations
}

func TestPropagate_Consistent(t *testing.T) {
	for _, size := range []int{9, 17, 33, 65} {
		for seed := int64(1); seed <= 4; seed++ {
			hf := newTestHeightfield(t, randomGrid(size, seed), 2)
			hf.Update(4)
			hf.Propagate()

			if v := propagationViolations(hf); len(v) > 0 {
				t.Errorf("size %d seed %d: %d violations, first: %s", size, seed, len(v), v[0])
			}
		}
	}
}

func TestPropagate_DetectsUnpropagated(t *testing.T) {
	hf := newTestHeightfield(t, newTestGrid(9, 9, func(x, z int) float32 { return 0 }), 1)

	// A lone fine vertex with nothing above it.
	hf.Activate(1, 1, 3)
	if v := propagationViolations(hf); len(v) == 0 {
		t.Fatal("expected violations before propagation")
	}

	hf.Propagate()
	if v := propagationViolations(hf); len(v) > 0 {
		t.Errorf("expected no violations after propagation, got %v", v)
	}

	// The dependency chain reaches the root center.
	if got := hf.Level(4, 4); got != 3 {
		t.Errorf("expected root center level 3, got %d", got)
	}
	if got := hf.Level(2, 2); got != 3 {
		t.Errorf("expected parent center level 3, got %d", got)
	}
}

func TestPropagate_Monotonic(t *testing.T) {
	hf := newTestHeightfield(t, randomGrid(17, 11), 3)
	hf.Update(3)

	before := make([]int, 17*17)
	for z := 0; z < 17; z++ {
		for x := 0; x < 17; x++ {
			before[z*17+x] = hf.Level(x, z)
		}
	}

	hf.Propagate()

	for z := 0; z < 17; z++ {
		for x := 0; x < 17; x++ {
			if hf.Level(x, z) < before[z*17+x] {
				t.Fatalf("vertex (%d, %d) lowered from %d to %d", x, z, before[z*17+x], hf.Level(x, z))
			}
		}
	}
}

func TestPropagateLevel_MatchesPropagate(t *testing.T) {
	a := newTestHeightfield(t, randomGrid(33, 5), 3)
	b := newTestHeightfield(t, randomGrid(33, 5), 3)
	a.Update(2)
	b.Update(2)

	a.Propagate()
	for target := 0; target < b.LogSize(); target++ {
		b.PropagateLevel(target)
		b.PropagateLevel(target)
	}

	for z := 0; z < 33; z++ {
		for x := 0; x < 33; x++ {
			if a.Level(x, z) != b.Level(x, z) {
				t.Fatalf("vertex (%d, %d): %d vs %d", x, z, a.Level(x, z), b.Level(x, z))
			}
		}
	}
}
