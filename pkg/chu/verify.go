package chu

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrInvalidChunk is wrapped by every problem Verify reports.
var ErrInvalidChunk = errors.New("invalid chunk")

// Verify decodes every mesh block and checks the table of contents for
// consistency. All problems found are combined into the returned error.
func (f *File) Verify() error {
	var errs error
	fail := func(c *ChunkHeader, format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w %d: %s", ErrInvalidChunk, c.Label, fmt.Sprintf(format, args...)))
	}

	if len(f.byLabel) != len(f.Chunks) {
		errs = multierr.Append(errs, fmt.Errorf("%w: %d duplicate labels", ErrInvalidChunk, len(f.Chunks)-len(f.byLabel)))
	}

	for i := range f.Chunks {
		c := &f.Chunks[i]

		if int(c.Label) >= len(f.Chunks) {
			fail(c, "label outside the tree")
		}
		if int(c.Level) >= int(f.Header.TreeDepth) {
			fail(c, "level %d outside tree depth %d", c.Level, f.Header.TreeDepth)
		}

		for d := East; d <= South; d++ {
			label := c.Neighbor(d)
			if label == NoNeighbor {
				continue
			}
			n, ok := f.Chunk(label)
			if !ok {
				fail(c, "%s neighbor %d not found", d, label)
				continue
			}
			if n.Level != c.Level {
				fail(c, "%s neighbor %d at level %d, expected %d", d, label, n.Level, c.Level)
			}
		}

		m, err := f.Mesh(c)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %w", ErrInvalidChunk, err))
			continue
		}
		for _, idx := range m.Indices {
			if int(idx) >= len(m.Vertices) {
				fail(c, "index %d out of %d vertices", idx, len(m.Vertices))
				break
			}
		}
		for _, v := range m.Vertices {
			if v.Y < c.MinY || v.Y > c.MaxY {
				fail(c, "vertex height %d outside [%d, %d]", v.Y, c.MinY, c.MaxY)
				break
			}
		}
	}

	return errs
}
