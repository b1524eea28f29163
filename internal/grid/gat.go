package grid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/chunklod/internal/logger"
)

// GAT errors.
var (
	ErrInvalidGATMagic       = errors.New("invalid GAT magic: expected 'GRAT'")
	ErrUnsupportedGATVersion = errors.New("unsupported GAT version")
	ErrTruncatedGATData      = errors.New("truncated GAT data")
)

const (
	gatHeaderSize = 14
	gatCellSize   = 20
	gatMaxCells   = 4096
)

// gatCell is one altitude table cell: corner altitudes in the order
// bottom-left, bottom-right, top-left, top-right, then the cell type.
type gatCell struct {
	Heights [4]float32
	Type    uint32
}

// gatCorners maps each cell corner to its vertex offset.
var gatCorners = [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

// ParseGAT converts a Ragnarok Online ground altitude table to a grid of
// cell corners. A table of w x h cells gives (w+1) x (h+1) samples, each the
// mean of the corner altitudes that meet there. Altitudes grow downward in
// the table, so samples are negated and multiplied by scale.
func ParseGAT(data []byte, spacing float64, scale float32) (*Grid, error) {
	if len(data) < gatHeaderSize {
		return nil, ErrTruncatedGATData
	}
	if string(data[0:4]) != "GRAT" {
		return nil, ErrInvalidGATMagic
	}

	// Stored as [minor, major]; the cell layout is the same for 1.x to 3.x.
	major, minor := data[5], data[4]
	if major < 1 || major > 3 {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedGATVersion, major, minor)
	}

	width := int(binary.LittleEndian.Uint32(data[6:10]))
	height := int(binary.LittleEndian.Uint32(data[10:14]))
	if width <= 0 || height <= 0 || width > gatMaxCells || height > gatMaxCells {
		return nil, fmt.Errorf("invalid GAT dimensions: %dx%d", width, height)
	}
	if need := gatHeaderSize + width*height*gatCellSize; len(data) < need {
		return nil, fmt.Errorf("%w: %d of %d bytes", ErrTruncatedGATData, len(data), need)
	}

	cells := make([]gatCell, width*height)
	if err := binary.Read(bytes.NewReader(data[gatHeaderSize:]), binary.LittleEndian, cells); err != nil {
		return nil, fmt.Errorf("%w: reading cells", ErrTruncatedGATData)
	}

	g, err := NewGrid(width+1, height+1, spacing)
	if err != nil {
		return nil, err
	}
	counts := make([]uint8, len(g.values))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := &cells[y*width+x]
			for i, off := range gatCorners {
				j := (y+off[1])*g.width + x + off[0]
				g.values[j] += c.Heights[i]
				counts[j]++
			}
		}
	}
	for i, n := range counts {
		g.values[i] = -g.values[i] / float32(n) * scale
	}
	return g, nil
}

// LoadGAT reads a ground altitude table from disk. See ParseGAT.
func LoadGAT(path string, spacing float64, scale float32) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GAT file: %w", err)
	}
	g, err := ParseGAT(data, spacing, scale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	lo, hi := g.HeightRange()
	logger.Info("altitude table loaded",
		zap.String("path", path),
		zap.Int("width", g.width),
		zap.Int("height", g.height),
		zap.Float32("min", lo),
		zap.Float32("max", hi))

	return g, nil
}
