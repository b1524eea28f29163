package chu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// File is a parsed .chu header and table of contents.
type File struct {
	Header Header
	Chunks []ChunkHeader

	byLabel map[uint32]int
	data    io.ReaderAt
	size    int64
}

// ParseFile parses a .chu file held in memory.
func ParseFile(data []byte) (*File, error) {
	return ParseFileAt(bytes.NewReader(data), int64(len(data)))
}

// ParseFileAt parses the header and table of contents from r. Mesh blocks
// are read lazily by Mesh.
func ParseFileAt(r io.ReaderAt, size int64) (*File, error) {
	if size < int64(HeaderSize) {
		return nil, ErrTruncatedData
	}

	sr := io.NewSectionReader(r, 0, size)

	var header Header
	if err := binary.Read(sr, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedData)
	}
	if header.Magic != Magic {
		return nil, ErrInvalidMagic
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}
	if want := uint32(NodeCount(int(header.TreeDepth))); header.ChunkCount != want {
		return nil, fmt.Errorf("chunk count %d does not match tree depth %d (want %d)",
			header.ChunkCount, header.TreeDepth, want)
	}
	if TOCOffset(int(header.ChunkCount)) > size {
		return nil, fmt.Errorf("%w: table of contents", ErrTruncatedData)
	}

	f := &File{
		Header:  header,
		Chunks:  make([]ChunkHeader, header.ChunkCount),
		byLabel: make(map[uint32]int, header.ChunkCount),
		data:    r,
		size:    size,
	}
	if err := binary.Read(sr, binary.LittleEndian, f.Chunks); err != nil {
		return nil, fmt.Errorf("%w: reading table of contents", ErrTruncatedData)
	}
	for i := range f.Chunks {
		f.byLabel[f.Chunks[i].Label] = i
	}

	return f, nil
}

// ReadFile parses a .chu file from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading CHU file: %w", err)
	}
	return ParseFile(data)
}

// Size returns the size of the underlying file.
func (f *File) Size() int64 {
	return f.size
}

// Chunk returns the chunk with the given label.
func (f *File) Chunk(label uint32) (*ChunkHeader, bool) {
	i, ok := f.byLabel[label]
	if !ok || label == NoNeighbor {
		return nil, false
	}
	return &f.Chunks[i], true
}

// Neighbor returns the chunk adjacent to c in direction d. Labels that are
// NoNeighbor or that name no chunk in the table mean there is no neighbor.
func (f *File) Neighbor(c *ChunkHeader, d Direction) (*ChunkHeader, bool) {
	return f.Chunk(c.Neighbor(d))
}

// Mesh reads and decodes the mesh block of c.
func (f *File) Mesh(c *ChunkHeader) (*Mesh, error) {
	off := int64(c.MeshOffset)
	if off < TOCOffset(len(f.Chunks)) || off >= f.size {
		return nil, fmt.Errorf("chunk %d: mesh offset %d outside data area", c.Label, off)
	}
	limit := f.size - off
	mesh, err := readMesh(io.NewSectionReader(f.data, off, limit), limit)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", c.Label, err)
	}
	return mesh, nil
}
