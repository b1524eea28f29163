package chunklod

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/chunklod/internal/heightfield"
	"github.com/Faultbox/chunklod/pkg/chu"
)

// quantizeRange is the number of fixed-point steps on each side of a chunk's
// bounding box center.
const quantizeRange = 1 << 14

type vertexKey struct {
	x, z int
}

// meshVertex is either a heightfield vertex, whose height is read from the
// heightfield at write time, or a special skirt vertex with its own height.
type meshVertex struct {
	x, z    int
	y       int16
	special bool
}

// meshBuilder accumulates one chunk's vertices and strip indices.
type meshBuilder struct {
	hf *heightfield.Heightfield

	vertices []meshVertex
	indices  []int
	lookup   map[vertexKey]int

	min, max   mgl32.Vec3
	minY, maxY int16
}

func newMeshBuilder(hf *heightfield.Heightfield) *meshBuilder {
	m := &meshBuilder{hf: hf, lookup: make(map[vertexKey]int, 4096)}
	m.reset()
	return m
}

// reset empties the builder for a new chunk.
func (m *meshBuilder) reset() {
	m.vertices = m.vertices[:0]
	m.indices = m.indices[:0]
	clear(m.lookup)

	m.min = mgl32.Vec3{1e6, 1e6, 1e6}
	m.max = mgl32.Vec3{-1e6, -1e6, -1e6}
	m.minY = math.MaxInt16
	m.maxY = math.MinInt16
}

// vertexIndex returns the index of the heightfield vertex at (x, z), adding
// it if this chunk has not used it yet.
func (m *meshBuilder) vertexIndex(x, z int) int {
	key := vertexKey{x, z}
	if i, ok := m.lookup[key]; ok {
		return i
	}
	i := len(m.vertices)
	m.vertices = append(m.vertices, meshVertex{x: x, z: z})
	m.lookup[key] = i
	return i
}

// emitVertex appends the heightfield vertex at (x, z) to the strip.
func (m *meshBuilder) emitVertex(x, z int) {
	m.indices = append(m.indices, m.vertexIndex(x, z))
	m.updateBounds(x, m.hf.Height(x, z), z)
}

// emitSpecialVertex appends a vertex that is not shared with the heightfield
// and carries its own height.
func (m *meshBuilder) emitSpecialVertex(x int, y int16, z int) {
	i := len(m.vertices)
	m.vertices = append(m.vertices, meshVertex{x: x, z: z, y: y, special: true})
	m.indices = append(m.indices, i)
	m.updateBounds(x, y, z)
}

// emitPreviousVertex repeats the last strip index, producing a degenerate
// triangle.
func (m *meshBuilder) emitPreviousVertex() {
	m.indices = append(m.indices, m.indices[len(m.indices)-1])
}

func (m *meshBuilder) indexCount() int {
	return len(m.indices)
}

func (m *meshBuilder) updateBounds(x int, y int16, z int) {
	spacing := m.hf.SampleSpacing()
	v := mgl32.Vec3{float32(x) * spacing, float32(y) * m.hf.VerticalScale(), float32(z) * spacing}
	for i := 0; i < 3; i++ {
		m.min[i] = min(m.min[i], v[i])
		m.max[i] = max(m.max[i], v[i])
	}
	m.minY = min(m.minY, y)
	m.maxY = max(m.maxY, y)

	// A strip that opens with the same vertex three times starts with two
	// no-op triangles.
	if len(m.indices) == 3 && m.indices[0] == m.indices[1] && m.indices[0] == m.indices[2] {
		m.indices = m.indices[:1]
	}
}

// build quantizes the accumulated chunk into a chu.Mesh. Morph deltas are
// measured against the mesh one level coarser than level.
func (m *meshBuilder) build(level int) (*chu.Mesh, error) {
	if len(m.vertices) > chu.MaxVertices {
		return nil, fmt.Errorf("%w: %d vertices", ErrChunkCapacity, len(m.vertices))
	}

	center := m.min.Add(m.max).Mul(0.5)
	extent := m.max.Sub(m.min).Mul(0.5)
	var factor mgl32.Vec3
	for i := 0; i < 3; i++ {
		factor[i] = quantizeRange / max(1, extent[i])
	}

	spacing := m.hf.SampleSpacing()
	quantize := func(c int, axis int) int16 {
		return int16(math.Floor(float64((float32(c)*spacing-center[axis])*factor[axis]) + 0.5))
	}

	mesh := &chu.Mesh{
		Vertices: make([]chu.Vertex, len(m.vertices)),
		Indices:  make([]uint16, len(m.indices)),
	}
	for i, v := range m.vertices {
		out := chu.Vertex{X: quantize(v.x, 0), Z: quantize(v.z, 2)}
		if v.special {
			out.Y = v.y
		} else {
			out.Y = m.hf.Height(v.x, v.z)
			out.MorphDelta = m.hf.HeightAtLOD(level+1, v.x, v.z) - out.Y
		}
		mesh.Vertices[i] = out
	}
	for i, idx := range m.indices {
		mesh.Indices[i] = uint16(idx)
	}

	tris, _ := chu.CountTriangles(mesh.Indices)
	mesh.RealTriangles = uint32(tris)

	return mesh, nil
}
