package chu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Vertex is one quantized chunk vertex.
type Vertex struct {
	X, Y, Z    int16
	MorphDelta int16 // height at the next coarser level minus Y
}

// Mesh is one chunk's vertex and triangle-strip data.
type Mesh struct {
	Vertices      []Vertex
	Indices       []uint16 // triangle strip, including degenerate repeats
	RealTriangles uint32
}

// Size returns the encoded size of the mesh block in bytes.
func (m *Mesh) Size() int {
	return 2 + len(m.Vertices)*8 + 4 + len(m.Indices)*2 + 4
}

// AppendBinary appends the encoded mesh block to b.
func (m *Mesh) AppendBinary(b []byte) ([]byte, error) {
	if len(m.Vertices) > MaxVertices {
		return b, fmt.Errorf("%w: %d vertices", ErrTooManyVertices, len(m.Vertices))
	}

	le := binary.LittleEndian
	b = le.AppendUint16(b, uint16(len(m.Vertices)))
	for _, v := range m.Vertices {
		b = le.AppendUint16(b, uint16(v.X))
		b = le.AppendUint16(b, uint16(v.Y))
		b = le.AppendUint16(b, uint16(v.Z))
		b = le.AppendUint16(b, uint16(v.MorphDelta))
	}

	b = le.AppendUint32(b, uint32(len(m.Indices)))
	for _, idx := range m.Indices {
		b = le.AppendUint16(b, idx)
	}

	b = le.AppendUint32(b, m.RealTriangles)
	return b, nil
}

// MarshalBinary encodes the mesh block.
func (m *Mesh) MarshalBinary() ([]byte, error) {
	return m.AppendBinary(make([]byte, 0, m.Size()))
}

// ParseMesh decodes a mesh block starting at the beginning of data.
func ParseMesh(data []byte) (*Mesh, error) {
	return readMesh(bytes.NewReader(data), int64(len(data)))
}

// readMesh decodes a mesh block from r, which holds at most limit bytes.
func readMesh(r io.Reader, limit int64) (*Mesh, error) {
	var vertexCount uint16
	if err := binary.Read(r, binary.LittleEndian, &vertexCount); err != nil {
		return nil, fmt.Errorf("%w: reading vertex count", ErrTruncatedData)
	}

	mesh := &Mesh{Vertices: make([]Vertex, vertexCount)}
	if err := binary.Read(r, binary.LittleEndian, mesh.Vertices); err != nil {
		return nil, fmt.Errorf("%w: reading %d vertices", ErrTruncatedData, vertexCount)
	}

	var indexCount uint32
	if err := binary.Read(r, binary.LittleEndian, &indexCount); err != nil {
		return nil, fmt.Errorf("%w: reading index count", ErrTruncatedData)
	}
	remaining := limit - 2 - int64(vertexCount)*8 - 4
	if int64(indexCount)*2 > remaining {
		return nil, fmt.Errorf("%w: %d indices declared, %d bytes left", ErrTruncatedData, indexCount, remaining)
	}

	mesh.Indices = make([]uint16, indexCount)
	if err := binary.Read(r, binary.LittleEndian, mesh.Indices); err != nil {
		return nil, fmt.Errorf("%w: reading indices", ErrTruncatedData)
	}

	if err := binary.Read(r, binary.LittleEndian, &mesh.RealTriangles); err != nil {
		return nil, fmt.Errorf("%w: reading triangle count", ErrTruncatedData)
	}

	return mesh, nil
}

// CountTriangles returns the real and degenerate triangle counts of a strip.
// A strip triangle is degenerate when any two of its three indices are equal.
func CountTriangles(indices []uint16) (tris, degenerate int) {
	for i := 0; i+2 < len(indices); i++ {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a != b && a != c && b != c {
			tris++
		} else {
			degenerate++
		}
	}
	return tris, degenerate
}
