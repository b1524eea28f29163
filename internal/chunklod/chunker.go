// Package chunklod builds a quadtree of chunked level-of-detail meshes from a
// heightfield and writes it as a .chu file.
//
// ProcessGrid runs in two strictly ordered phases. The compute phase assigns
// every vertex the coarsest level at which it is needed and propagates those
// levels up the quadtree. The generate phase walks the quadtree from the root,
// building one triangle strip with edge skirts per chunk.
package chunklod

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/chunklod/internal/heightfield"
	"github.com/Faultbox/chunklod/internal/logger"
	"github.com/Faultbox/chunklod/pkg/chu"
)

// Chunker errors.
var (
	ErrChunkCapacity   = errors.New("chunk needs more vertices than 16-bit indices can address")
	ErrCanceled        = errors.New("chunk generation canceled")
	ErrInvalidMaxError = errors.New("base max error must be positive")
)

// Params are the chunk tree parameters.
type Params struct {
	TreeDepth          int
	BaseMaxError       float32 // meters, at the finest level
	VerticalScale      float32 // meters per stored height unit
	InputVerticalScale float32 // meters per source sample unit; zero means 1
	Storage            heightfield.StorageOptions
}

// ProgressFunc receives the percentage of chunks started so far. Returning
// true cancels the run before the next chunk.
type ProgressFunc func(percent int) bool

// Chunker converts elevation grids to .chu files.
type Chunker struct {
	Params   Params
	Progress ProgressFunc
}

// New creates a Chunker with the given parameters.
func New(params Params) *Chunker {
	return &Chunker{Params: params}
}

// generator holds the state of one generate phase.
type generator struct {
	ctx      context.Context
	hf       *heightfield.Heightfield
	mesh     *meshBuilder
	out      *chu.Writer
	progress ProgressFunc
	stats    *Stats
	started  int

	edgeMinimums []int
}

// ProcessGrid builds the chunk tree for grid and writes it to out. On error
// the contents of out are undefined and must be discarded. The context and
// the progress callback are only checked between chunks.
func (c *Chunker) ProcessGrid(ctx context.Context, grid heightfield.ElevationGrid, out io.WriterAt) (Stats, error) {
	var stats Stats
	p := c.Params
	if p.BaseMaxError <= 0 {
		return stats, fmt.Errorf("%w: %f", ErrInvalidMaxError, p.BaseMaxError)
	}

	hf, err := heightfield.New(grid, heightfield.Options{
		TreeDepth:          p.TreeDepth,
		VerticalScale:      p.VerticalScale,
		InputVerticalScale: p.InputVerticalScale,
		Storage:            p.Storage,
	})
	if err != nil {
		return stats, err
	}
	defer hf.Close()

	stats.InputVertices = hf.Size() * hf.Size()
	stats.TotalChunks = chu.NodeCount(p.TreeDepth)

	start := time.Now()
	logger.Info("updating activation levels",
		zap.Int("size", hf.Size()),
		zap.Float32("base_max_error", p.BaseMaxError))
	hf.Update(p.BaseMaxError)

	logger.Info("propagating activation levels", zap.Int("levels", hf.LogSize()))
	hf.Propagate()
	logger.Info("compute phase done",
		zap.Int("activated", hf.ActivatedVertices()),
		zap.Duration("elapsed", time.Since(start)))

	extent := float32(int(1)<<(hf.LogSize()-(p.TreeDepth-1))) * hf.SampleSpacing()
	w, err := chu.NewWriter(out, chu.NewHeader(p.TreeDepth, p.BaseMaxError, p.VerticalScale, extent))
	if err != nil {
		return stats, err
	}

	g := &generator{
		ctx:      ctx,
		hf:       hf,
		mesh:     newMeshBuilder(hf),
		out:      w,
		progress: c.Progress,
		stats:    &stats,
	}

	start = time.Now()
	logger.Info("generating chunks", zap.Int("chunks", stats.TotalChunks))
	genErr := g.generateNode(0, 0, hf.LogSize(), hf.RootLevel())

	stats.GeneratedChunks = w.Chunks()
	stats.OutputVertices = hf.ActivatedVertices()
	stats.OutputSize = w.Size()
	if genErr != nil {
		return stats, genErr
	}

	if err := w.Flush(); err != nil {
		return stats, err
	}

	logger.Info("chunks generated",
		zap.Int("chunks", stats.GeneratedChunks),
		zap.Int64("bytes", stats.OutputSize),
		zap.Duration("elapsed", time.Since(start)))

	return stats, nil
}

// checkCanceled reports the next chunk to the progress callback and returns
// ErrCanceled if the callback or the context asks to stop.
func (g *generator) checkCanceled() error {
	g.started++
	if err := g.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	if g.progress != nil && g.progress(g.started*100/g.stats.TotalChunks) {
		return ErrCanceled
	}
	return nil
}
