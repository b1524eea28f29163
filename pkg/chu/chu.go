// Package chu reads and writes chunked-LOD terrain files (.chu).
//
// A .chu file is a fixed header, a table of contents with one fixed-size
// chunk header per quadtree node, and variable-length mesh blocks appended
// after the table and referenced by absolute file offset.
package chu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Format constants.
const (
	// Magic is "CHU\0" read as a little-endian uint32.
	Magic uint32 = 'C' | 'H'<<8 | 'U'<<16

	// Version is the only file format version written and accepted.
	Version uint16 = 9

	// NoNeighbor is the label stored for a neighbor that falls outside the grid.
	NoNeighbor uint32 = 0xFFFFFFFF

	// MaxVertices is the largest vertex count a chunk can address with 16-bit indices.
	MaxVertices = 1<<16 - 1

	// MaxDepth is the deepest chunk quadtree the format can describe.
	// Activation levels are stored in a nibble and 15 is reserved.
	MaxDepth = 15
)

// Format errors.
var (
	ErrInvalidMagic       = errors.New("invalid CHU magic: expected 'CHU'")
	ErrUnsupportedVersion = errors.New("unsupported CHU version")
	ErrTruncatedData      = errors.New("truncated CHU data")
	ErrOffsetOverflow     = errors.New("CHU offset exceeds 32 bits")
	ErrTooManyVertices    = errors.New("chunk vertex count exceeds 16-bit index range")
)

// Direction identifies one of a chunk's four edges.
type Direction int

// Edge directions, in the order neighbor labels are stored.
const (
	East Direction = iota
	North
	West
	South
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case East:
		return "east"
	case North:
		return "north"
	case West:
		return "west"
	case South:
		return "south"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Header is the fixed file header.
type Header struct {
	Magic         uint32
	Version       uint16
	TreeDepth     uint16
	BaseMaxError  float32 // max geometric error at the finest level, meters
	VerticalScale float32 // meters per stored height unit
	ChunkExtent   float32 // x/z size of a finest-level chunk, meters
	ChunkCount    uint32
}

// ChunkHeader is one table-of-contents entry. Field order is the wire order.
type ChunkHeader struct {
	Label      uint32
	Neighbors  [4]uint32 // indexed by Direction
	Level      uint8     // 0 = finest
	X          uint16    // grid position at this level
	Z          uint16
	MinY       int16
	MaxY       int16
	MeshOffset uint32
}

// Encoded sizes.
var (
	HeaderSize      = binary.Size(Header{})
	ChunkHeaderSize = binary.Size(ChunkHeader{})
)

// Neighbor returns the label of the neighbor in direction d.
func (c *ChunkHeader) Neighbor(d Direction) uint32 {
	return c.Neighbors[d]
}

// NodeCount returns the number of nodes in a fully populated quadtree of the
// given depth, (4^depth - 1) / 3.
func NodeCount(depth int) int {
	if depth <= 0 {
		return 0
	}
	return 0x55555555 & ((1 << (depth * 2)) - 1)
}

// NewHeader returns a header for a tree of the given depth.
func NewHeader(depth int, baseMaxError, verticalScale, chunkExtent float32) Header {
	return Header{
		Magic:         Magic,
		Version:       Version,
		TreeDepth:     uint16(depth),
		BaseMaxError:  baseMaxError,
		VerticalScale: verticalScale,
		ChunkExtent:   chunkExtent,
		ChunkCount:    uint32(NodeCount(depth)),
	}
}

// TOCOffset returns the file offset of the i-th table-of-contents entry.
func TOCOffset(i int) int64 {
	return int64(HeaderSize) + int64(i)*int64(ChunkHeaderSize)
}
