package heightfield

// Propagate makes activation levels consistent across the quadtree: every
// cell's edge midpoints are at least as required as the centers of the child
// cells touching them, and every center is at least as required as its edge
// midpoints. Levels are processed finest first; each level is swept twice so
// neighboring cells that share a midpoint agree regardless of visit order.
func (hf *Heightfield) Propagate() {
	for target := 0; target < hf.logSize; target++ {
		hf.PropagateLevel(target)
		hf.PropagateLevel(target)
	}
}

// PropagateLevel runs a single sweep for one target level over the whole
// tree. Callers must sweep targets in increasing order.
func (hf *Heightfield) PropagateLevel(target int) {
	c := hf.size >> 1
	hf.propagate(c, c, hf.logSize-1, target)
}

func (hf *Heightfield) propagate(cx, cz, level, target int) {
	half := 1 << level
	quarter := half >> 1

	if level > target {
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				hf.propagate(cx-quarter+half*i, cz-quarter+half*j, level-1, target)
			}
		}
		return
	}

	if level > 0 {
		// Child centers to edge midpoints.
		lev := hf.Level(cx+quarter, cz-quarter) // ne
		hf.Activate(cx+half, cz, lev)
		hf.Activate(cx, cz-half, lev)

		lev = hf.Level(cx-quarter, cz-quarter) // nw
		hf.Activate(cx, cz-half, lev)
		hf.Activate(cx-half, cz, lev)

		lev = hf.Level(cx-quarter, cz+quarter) // sw
		hf.Activate(cx-half, cz, lev)
		hf.Activate(cx, cz+half, lev)

		lev = hf.Level(cx+quarter, cz+quarter) // se
		hf.Activate(cx, cz+half, lev)
		hf.Activate(cx+half, cz, lev)
	}

	// Edge midpoints to center.
	hf.Activate(cx, cz, hf.Level(cx+half, cz))
	hf.Activate(cx, cz, hf.Level(cx, cz-half))
	hf.Activate(cx, cz, hf.Level(cx, cz+half))
	hf.Activate(cx, cz, hf.Level(cx-half, cz))
}
