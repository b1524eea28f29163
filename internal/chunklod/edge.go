package chunklod

import "math"

// MaxNeighborLODDifference is the largest level difference a renderer may
// show between chunks that share an edge. Skirts are deep enough to cover
// any neighbor within this range.
const MaxNeighborLODDifference = 2

// generateEdge appends a skirt along the chunk edge from (x0, z0) to
// (x1, z1). Every vertex active at level gets a paired special vertex below
// the lowest height the edge can take at any neighbor LOD the renderer may
// place next to it.
func (g *generator) generateEdge(x0, z0, x1, z1, level int) {
	hf := g.hf

	var dx, dz, steps int
	switch {
	case x0 < x1:
		dx, steps = 1, x1-x0+1
	case x0 > x1:
		dx, steps = -1, x0-x1+1
	case z0 < z1:
		dz, steps = 1, z1-z0+1
	case z0 > z1:
		dz, steps = -1, z0-z1+1
	default:
		panic("chunklod: zero-length edge")
	}

	// Every edge is interior to a chunk at MinimumEdgeLOD, so nothing
	// coarser than that can border it.
	major := x0
	if dz == 0 {
		major = z0
	}
	diff := min(hf.MinimumEdgeLOD(major)+1, hf.RootLevel()) - level
	diff = min(diff, MaxNeighborLODDifference)

	minimums := g.edgeMinimums[:0]
	current := int(hf.Height(x0, z0))
	for i, x, z := 0, x0, z0; i < steps; i, x, z = i+1, x+dx, z+dz {
		current = min(current, int(hf.Height(x, z)))
		if hf.Level(x, z) < level {
			continue
		}

		for lod := level; lod <= level+diff; lod++ {
			current = min(current, int(hf.HeightAtLOD(lod, x, z)))
		}
		if current > math.MinInt16 {
			current--
		}
		minimums = append(minimums, current)
		current = int(hf.Height(x, z))
	}
	g.edgeMinimums = minimums

	// Close the previous strip; an even count would flip the winding of
	// the next one.
	g.mesh.emitPreviousVertex()
	if g.mesh.indexCount()&1 == 0 {
		g.mesh.emitPreviousVertex()
	}

	k := 0
	for i, x, z := 0, x0, z0; i < steps; i, x, z = i+1, x+dx, z+dz {
		if hf.Level(x, z) < level {
			continue
		}

		h := minimums[k]
		if k+1 < len(minimums) {
			h = min(h, minimums[k+1])
		}

		g.mesh.emitVertex(x, z)
		if i == 0 {
			g.mesh.emitPreviousVertex()
		}
		g.mesh.emitSpecialVertex(x, int16(h), z)
		k++
	}
}
