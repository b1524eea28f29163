package chu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrTOCFull is returned when more chunks are added than the header declares.
var ErrTOCFull = errors.New("CHU table of contents is full")

// Writer lays out a .chu stream in two passes: mesh blocks are appended
// after a zeroed table of contents, then Flush patches the table in place.
type Writer struct {
	w      io.WriterAt
	header Header
	end    int64
	chunks []ChunkHeader
}

// NewWriter writes the file header and a placeholder table of contents
// sized for header.ChunkCount entries.
func NewWriter(w io.WriterAt, header Header) (*Writer, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("encoding header: %w", err)
	}
	buf.Write(make([]byte, int(header.ChunkCount)*ChunkHeaderSize))

	if _, err := w.WriteAt(buf.Bytes(), 0); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	return &Writer{
		w:      w,
		header: header,
		end:    int64(buf.Len()),
		chunks: make([]ChunkHeader, 0, header.ChunkCount),
	}, nil
}

// Size returns the current length of the stream.
func (w *Writer) Size() int64 {
	return w.end
}

// Append writes p at the end of the stream and returns its offset.
func (w *Writer) Append(p []byte) (int64, error) {
	off := w.end
	if off+int64(len(p)) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: appending %d bytes at %d", ErrOffsetOverflow, len(p), off)
	}
	n, err := w.w.WriteAt(p, off)
	w.end += int64(n)
	if err != nil {
		return 0, fmt.Errorf("appending at %d: %w", off, err)
	}
	return off, nil
}

// WriteAt writes p at an absolute offset without moving the end of the stream
// unless the write extends past it.
func (w *Writer) WriteAt(p []byte, off int64) (int, error) {
	n, err := w.w.WriteAt(p, off)
	if end := off + int64(n); end > w.end {
		w.end = end
	}
	return n, err
}

// AppendChunk appends a mesh block and queues its table-of-contents entry
// with MeshOffset pointing at the block.
func (w *Writer) AppendChunk(h ChunkHeader, mesh *Mesh) error {
	if len(w.chunks) >= int(w.header.ChunkCount) {
		return fmt.Errorf("%w: %d entries", ErrTOCFull, w.header.ChunkCount)
	}

	data, err := mesh.MarshalBinary()
	if err != nil {
		return err
	}

	off, err := w.Append(data)
	if err != nil {
		return err
	}

	h.MeshOffset = uint32(off)
	w.chunks = append(w.chunks, h)
	return nil
}

// Chunks returns the number of chunks appended so far.
func (w *Writer) Chunks() int {
	return len(w.chunks)
}

// Flush writes the queued chunk headers into the table of contents, in the
// order the chunks were appended.
func (w *Writer) Flush() error {
	buf := new(bytes.Buffer)
	buf.Grow(len(w.chunks) * ChunkHeaderSize)
	for i := range w.chunks {
		if err := binary.Write(buf, binary.LittleEndian, &w.chunks[i]); err != nil {
			return fmt.Errorf("encoding chunk header %d: %w", i, err)
		}
	}

	if _, err := w.WriteAt(buf.Bytes(), TOCOffset(0)); err != nil {
		return fmt.Errorf("writing table of contents: %w", err)
	}
	return nil
}

// Buffer is an in-memory io.WriterAt.
type Buffer struct {
	buf []byte
}

// WriteAt writes p at off, growing the buffer as needed.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("chu.Buffer: negative offset")
	}
	if end := int(off) + len(p); end > len(b.buf) {
		if end > cap(b.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.buf)
			b.buf = grown
		} else {
			b.buf = b.buf[:end]
		}
	}
	return copy(b.buf[off:], p), nil
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the buffer length.
func (b *Buffer) Len() int {
	return len(b.buf)
}
