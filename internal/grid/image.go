package grid

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // register PNG decoder
	"os"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	"go.uber.org/zap"

	"github.com/Faultbox/chunklod/internal/logger"
)

// LoadImage reads a grayscale heightmap. Each gray level is scale meters;
// 16-bit images keep their full range. Color images use their luminance.
// The first image row is the northern edge of the grid.
func LoadImage(path string, spacing float64, scale float32) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	g, err := FromImage(img, spacing, scale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	lo, hi := g.HeightRange()
	logger.Info("heightmap loaded",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("width", g.width),
		zap.Int("height", g.height),
		zap.Float32("min", lo),
		zap.Float32("max", hi))

	return g, nil
}

// FromImage converts a decoded image to a grid. See LoadImage.
func FromImage(img image.Image, spacing float64, scale float32) (*Grid, error) {
	b := img.Bounds()
	g, err := NewGrid(b.Dx(), b.Dy(), spacing)
	if err != nil {
		return nil, err
	}

	var sample func(x, y int) float32
	switch m := img.(type) {
	case *image.Gray16:
		sample = func(x, y int) float32 { return float32(m.Gray16At(x, y).Y) }
	case *image.Gray:
		sample = func(x, y int) float32 { return float32(m.GrayAt(x, y).Y) }
	default:
		sample = func(x, y int) float32 {
			return float32(color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
		}
	}

	for row := 0; row < g.height; row++ {
		z := g.height - 1 - row
		for col := 0; col < g.width; col++ {
			g.Set(col, z, sample(b.Min.X+col, b.Min.Y+row)*scale)
		}
	}
	return g, nil
}
