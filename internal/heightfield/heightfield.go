// Package heightfield wraps a source elevation grid and tracks, per vertex,
// the coarsest level of detail at which the vertex must appear in a
// chunked-LOD mesh.
package heightfield

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"go.uber.org/zap"

	"github.com/Faultbox/chunklod/internal/logger"
)

// MaxLevel is the highest activation level a vertex can hold.
// Levels are stored in a nibble and 0xF marks an unset vertex.
const MaxLevel = 14

// maxLogSize bounds grids to (2^20)+1 samples per side.
const maxLogSize = 20

// Heightfield errors.
var (
	ErrInvalidGrid  = errors.New("invalid elevation grid")
	ErrInvalidDepth = errors.New("invalid chunk tree depth")
	ErrInvalidScale = errors.New("vertical scale must be positive")
)

// ElevationGrid is the source of elevation samples.
type ElevationGrid interface {
	Dimensions() (width, height int)
	Spacing() (dx, dz float64)
	FValue(x, z int) float32
}

// Options configures a Heightfield.
type Options struct {
	TreeDepth          int     // depth of the chunk quadtree
	VerticalScale      float32 // meters per stored height unit
	InputVerticalScale float32 // applied to source samples before storing; zero means 1
	Storage            StorageOptions
}

// Heightfield is a (2^n)+1 square view of an elevation grid plus a packed
// activation level per vertex.
type Heightfield struct {
	size          int
	logSize       int
	rootLevel     int
	sampleSpacing float32
	verticalScale float32
	inputScale    float32

	grid       ElevationGrid
	gridWidth  int
	gridHeight int

	buf       levelBuffer
	levels    []byte
	rowBytes  int
	activated int
}

// New builds a Heightfield over grid. Grids that are not (2^n)+1 square are
// extended to the next valid size with a warning; samples beyond the source
// dimensions repeat the nearest edge sample.
func New(grid ElevationGrid, opts Options) (*Heightfield, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidGrid)
	}
	if opts.VerticalScale <= 0 {
		return nil, fmt.Errorf("%w: %f", ErrInvalidScale, opts.VerticalScale)
	}
	if opts.InputVerticalScale == 0 {
		opts.InputVerticalScale = 1
	}

	width, height := grid.Dimensions()
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, width, height)
	}

	size := max(width, height)
	if size > (1<<maxLogSize)+1 {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d samples per side", ErrInvalidGrid, width, height, (1<<maxLogSize)+1)
	}

	logSize := int(math.Log2(float64(size-1)) + 0.5)
	if size != (1<<logSize)+1 || width != height {
		for size > (1<<logSize)+1 {
			logSize++
		}
		logger.Warn("elevation grid is not (2^N + 1) square; extending",
			zap.Int("width", width),
			zap.Int("height", height),
			zap.Int("size", (1<<logSize)+1))
		size = (1 << logSize) + 1
	}

	if opts.TreeDepth < 1 || opts.TreeDepth > logSize || opts.TreeDepth > MaxLevel+1 {
		return nil, fmt.Errorf("%w: %d (grid allows 1..%d)", ErrInvalidDepth, opts.TreeDepth, min(logSize, MaxLevel+1))
	}

	dx, _ := grid.Spacing()
	rowBytes := (size + 1) >> 1

	buf, err := newLevelBuffer(size*rowBytes, opts.Storage)
	if err != nil {
		return nil, fmt.Errorf("allocating activation levels: %w", err)
	}

	hf := &Heightfield{
		size:          size,
		logSize:       logSize,
		rootLevel:     opts.TreeDepth - 1,
		sampleSpacing: float32(dx),
		verticalScale: opts.VerticalScale,
		inputScale:    opts.InputVerticalScale,
		grid:          grid,
		gridWidth:     width,
		gridHeight:    height,
		buf:           buf,
		levels:        buf.Bytes(),
		rowBytes:      rowBytes,
	}
	for i := range hf.levels {
		hf.levels[i] = 0xFF
	}

	logger.Debug("heightfield initialized",
		zap.Int("size", size),
		zap.Float32("sample_spacing", hf.sampleSpacing),
		zap.Int("level_bytes", len(hf.levels)))

	return hf, nil
}

// Close releases the activation level storage.
func (hf *Heightfield) Close() error {
	if hf.buf == nil {
		return nil
	}
	err := hf.buf.Close()
	hf.buf = nil
	hf.levels = nil
	return err
}

// Size returns the number of vertices along each side.
func (hf *Heightfield) Size() int { return hf.size }

// LogSize returns n where Size() == (1<<n)+1.
func (hf *Heightfield) LogSize() int { return hf.logSize }

// RootLevel returns the activation level of the root chunk.
func (hf *Heightfield) RootLevel() int { return hf.rootLevel }

// SampleSpacing returns the horizontal distance between samples.
func (hf *Heightfield) SampleSpacing() float32 { return hf.sampleSpacing }

// VerticalScale returns meters per stored height unit.
func (hf *Heightfield) VerticalScale() float32 { return hf.verticalScale }

// ActivatedVertices returns how many vertices have been activated at least once.
func (hf *Heightfield) ActivatedVertices() int { return hf.activated }

// Height returns the stored height at (x, z). The source is read with its Z
// axis flipped: source row 0 is the heightfield's last row.
func (hf *Heightfield) Height(x, z int) int16 {
	return toInt16(hf.sample(x, hf.size-1-z) * hf.inputScale / hf.verticalScale)
}

// sample reads the source grid, clamping to its dimensions.
func (hf *Heightfield) sample(x, z int) float32 {
	x = min(max(x, 0), hf.gridWidth-1)
	z = min(max(z, 0), hf.gridHeight-1)
	return hf.grid.FValue(x, z)
}

func toInt16(f float32) int16 {
	switch {
	case f >= math.MaxInt16:
		return math.MaxInt16
	case f <= math.MinInt16:
		return math.MinInt16
	default:
		return int16(f)
	}
}

func (hf *Heightfield) levelIndex(x, z int) int {
	if x < 0 || x >= hf.size || z < 0 || z >= hf.size {
		panic(fmt.Sprintf("heightfield: vertex (%d, %d) outside %dx%d grid", x, z, hf.size, hf.size))
	}
	return z*hf.rowBytes + x>>1
}

// Level returns the activation level at (x, z), or -1 if the vertex is unset.
func (hf *Heightfield) Level(x, z int) int {
	v := hf.levels[hf.levelIndex(x, z)]
	if x&1 != 0 {
		v >>= 4
	}
	v &= 0x0F
	if v == 0x0F {
		return -1
	}
	return int(v)
}

// SetLevel stores the activation level at (x, z). Level -1 clears the vertex.
func (hf *Heightfield) SetLevel(x, z, level int) {
	if level < -1 || level > MaxLevel {
		panic(fmt.Sprintf("heightfield: activation level %d out of range", level))
	}
	i := hf.levelIndex(x, z)
	nibble := byte(level) & 0x0F
	if x&1 != 0 {
		hf.levels[i] = hf.levels[i]&0x0F | nibble<<4
	} else {
		hf.levels[i] = hf.levels[i]&0xF0 | nibble
	}
}

// Activate raises the activation level at (x, z) to level. It never lowers
// an existing level.
func (hf *Heightfield) Activate(x, z, level int) {
	current := hf.Level(x, z)
	if level > current {
		if current == -1 {
			hf.activated++
		}
		hf.SetLevel(x, z, level)
	}
}

// NodeIndex returns the breadth-first quadtree rank of the node centered at
// (cx, cz), assuming [nw, ne, sw, se] child order. Coordinates that name no
// node, such as those outside the grid, return -1.
func (hf *Heightfield) NodeIndex(cx, cz int) int {
	if cx < 0 || cx >= hf.size || cz < 0 || cz >= hf.size || cx|cz == 0 {
		return -1
	}

	l1 := bits.TrailingZeros(uint(cx | cz))
	depth := hf.logSize - l1 - 1
	if depth < 0 {
		return -1
	}

	base := 0x55555555 & ((1 << (depth * 2)) - 1) // nodes in all shallower levels
	shift := l1 + 1
	col := cx >> shift
	row := cz >> shift

	return base + row<<depth + col
}

// MinimumEdgeLOD returns the coarsest level whose chunks have an edge
// running along the given x or z coordinate.
func (hf *Heightfield) MinimumEdgeLOD(coord int) int {
	l1 := bits.TrailingZeros32(uint32(coord))
	depth := hf.logSize - l1 - 1
	return min(max(hf.rootLevel-depth, 0), hf.rootLevel)
}
