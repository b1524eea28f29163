// Package grid provides in-memory elevation grids and loaders for
// heightmap inputs.
package grid

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidDimensions is returned for grids without samples.
var ErrInvalidDimensions = errors.New("grid dimensions must be positive")

// Grid is a row-major grid of elevation samples. Row 0 is the southern edge.
type Grid struct {
	width, height int
	dx, dz        float64
	values        []float32
}

// NewGrid creates a zero-filled grid with the given sample spacing in meters.
func NewGrid(width, height int, spacing float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		dx:     spacing,
		dz:     spacing,
		values: make([]float32, width*height),
	}, nil
}

// FromFunc creates a grid filled by fn.
func FromFunc(width, height int, spacing float64, fn func(x, z int) float32) (*Grid, error) {
	g, err := NewGrid(width, height, spacing)
	if err != nil {
		return nil, err
	}
	for z := 0; z < height; z++ {
		for x := 0; x < width; x++ {
			g.values[z*width+x] = fn(x, z)
		}
	}
	return g, nil
}

// Dimensions returns the number of samples along x and z.
func (g *Grid) Dimensions() (int, int) { return g.width, g.height }

// Spacing returns the distance between samples in meters.
func (g *Grid) Spacing() (float64, float64) { return g.dx, g.dz }

// FValue returns the sample at (x, z).
func (g *Grid) FValue(x, z int) float32 {
	return g.values[z*g.width+x]
}

// Set stores the sample at (x, z).
func (g *Grid) Set(x, z int, v float32) {
	g.values[z*g.width+x] = v
}

// HeightRange returns the lowest and highest samples.
func (g *Grid) HeightRange() (lo, hi float32) {
	lo, hi = g.values[0], g.values[0]
	for _, v := range g.values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// Load reads a heightmap, choosing the decoder by file extension: .gat for
// altitude tables, anything else as an image.
func Load(path string, spacing float64, scale float32) (*Grid, error) {
	if strings.EqualFold(filepath.Ext(path), ".gat") {
		return LoadGAT(path, spacing, scale)
	}
	return LoadImage(path, spacing, scale)
}
