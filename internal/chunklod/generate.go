package chunklod

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/chunklod/internal/logger"
	"github.com/Faultbox/chunklod/pkg/chu"
)

// label converts a node index to a chunk label; -1 means no neighbor.
func label(index int) uint32 {
	if index < 0 {
		return chu.NoNeighbor
	}
	return uint32(index)
}

// generateNode writes the chunk for the square with northwest corner
// (x0, z0) and (2^logSize)+1 vertices per side, then its descendants.
func (g *generator) generateNode(x0, z0, logSize, level int) error {
	if err := g.checkCanceled(); err != nil {
		return err
	}

	hf := g.hf
	size := 1 << logSize
	half := size >> 1
	cx := x0 + half
	cz := z0 + half

	header := chu.ChunkHeader{
		Label: label(hf.NodeIndex(cx, cz)),
		Neighbors: [4]uint32{
			chu.East:  label(hf.NodeIndex(cx+size, cz)),
			chu.North: label(hf.NodeIndex(cx, cz-size)),
			chu.West:  label(hf.NodeIndex(cx-size, cz)),
			chu.South: label(hf.NodeIndex(cx, cz+size)),
		},
		Level: uint8(level),
		X:     uint16(x0 >> logSize),
		Z:     uint16(z0 >> logSize),
	}

	g.mesh.reset()

	// Corners are part of every chunk at its own level.
	hf.Activate(x0+size, z0, level)
	hf.Activate(x0, z0, level)
	hf.Activate(x0, z0+size, level)
	hf.Activate(x0+size, z0+size, level)

	g.generateBlock(level, logSize, cx, cz)

	// Counterclockwise around the outside keeps the skirt winding.
	g.generateEdge(cx+half, cz+half, cx+half, cz-half, level) // east
	g.generateEdge(cx+half, cz-half, cx-half, cz-half, level) // north
	g.generateEdge(cx-half, cz-half, cx-half, cz+half, level) // west
	g.generateEdge(cx-half, cz+half, cx+half, cz+half, level) // south

	g.stats.MostVerticesPerChunk = max(g.stats.MostVerticesPerChunk, len(g.mesh.vertices))

	mesh, err := g.mesh.build(level)
	if err != nil {
		logger.Error("chunk exceeds vertex capacity",
			zap.Uint32("label", header.Label),
			zap.Int("level", level),
			zap.Int("vertices", len(g.mesh.vertices)))
		return fmt.Errorf("chunk %d at level %d: %w", header.Label, level, err)
	}

	header.MinY = g.mesh.minY
	header.MaxY = g.mesh.maxY
	if err := g.out.AppendChunk(header, mesh); err != nil {
		return fmt.Errorf("writing chunk %d: %w", header.Label, err)
	}

	tris, degenerate := chu.CountTriangles(mesh.Indices)
	g.stats.RealTriangles += tris
	g.stats.DegenerateTriangles += degenerate

	logger.Debug("chunk written",
		zap.Uint32("label", header.Label),
		zap.Uint8("lod", header.Level),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("indices", len(mesh.Indices)))

	if level > 0 {
		half := 1 << (logSize - 1)
		children := [4][2]int{
			{x0, z0},               // nw
			{x0 + half, z0},        // ne
			{x0, z0 + half},        // sw
			{x0 + half, z0 + half}, // se
		}
		for _, c := range children {
			if err := g.generateNode(c[0], c[1], logSize-1, level-1); err != nil {
				return err
			}
		}
	}
	return nil
}

// stripState tracks the last two vertices emitted while walking a block, so
// the walk can decide between turning a corner and jumping with a
// degenerate triangle.
type stripState struct {
	buffer          [2][2]int
	ptr             int
	previousLevel   int
	activationLevel int
}

func (s *stripState) inBuffer(x, z int) bool {
	return (x == s.buffer[0][0] && z == s.buffer[0][1]) ||
		(x == s.buffer[1][0] && z == s.buffer[1][1])
}

func (s *stripState) setBuffer(x, z int) {
	s.buffer[s.ptr] = [2]int{x, z}
}

// generateBlock emits one triangle strip covering the square centered at
// (cx, cz), walking its four triangular quadrants counterclockwise and
// including only vertices active at level.
func (g *generator) generateBlock(level, logSize, cx, cz int) {
	hs := 1 << (logSize - 1)
	q := [4][2]int{
		{cx + hs, cz + hs}, // se
		{cx + hs, cz - hs}, // ne
		{cx - hs, cz - hs}, // nw
		{cx - hs, cz + hs}, // sw
	}

	s := &stripState{
		buffer:          [2][2]int{{-1, -1}, {-1, -1}},
		activationLevel: level,
	}

	g.mesh.emitVertex(q[0][0], q[0][1])
	s.setBuffer(q[0][0], q[0][1])

	for i := 0; i < 4; i++ {
		if s.previousLevel&1 == 0 {
			s.ptr ^= 1
		} else {
			b := s.buffer[1-s.ptr]
			g.mesh.emitVertex(b[0], b[1])
		}

		g.mesh.emitVertex(q[i][0], q[i][1])
		s.setBuffer(q[i][0], q[i][1])
		s.previousLevel = 2*logSize + 1

		next := q[(i+1)&3]
		g.generateQuadrant(s, q[i][0], q[i][1], cx, cz, next[0], next[1], 2*logSize)
	}

	if !s.inBuffer(q[0][0], q[0][1]) {
		g.mesh.emitVertex(q[0][0], q[0][1])
	}
}

// generateQuadrant emits the triangle (l, t, r), where t is the apex,
// refining it while its apex is active.
func (g *generator) generateQuadrant(s *stripState, lx, lz, tx, tz, rx, rz, rec int) {
	if rec <= 0 {
		return
	}
	if g.hf.Level(tx, tz) < s.activationLevel {
		return
	}

	bx := (lx + rx) >> 1
	bz := (lz + rz) >> 1

	g.generateQuadrant(s, lx, lz, bx, bz, tx, tz, rec-1)

	if !s.inBuffer(tx, tz) {
		if (rec+s.previousLevel)&1 != 0 {
			s.ptr ^= 1
		} else {
			b := s.buffer[1-s.ptr]
			g.mesh.emitVertex(b[0], b[1])
		}
		g.mesh.emitVertex(tx, tz)
		s.setBuffer(tx, tz)
		s.previousLevel = rec
	}

	g.generateQuadrant(s, tx, tz, bx, bz, rx, rz, rec-1)
}
