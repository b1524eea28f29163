package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/xlab/closer"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/chunklod/internal/chunklod"
	"github.com/Faultbox/chunklod/internal/config"
	"github.com/Faultbox/chunklod/internal/grid"
	"github.com/Faultbox/chunklod/internal/heightfield"
	"github.com/Faultbox/chunklod/internal/logger"
)

func cmdBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: chutool build [flags] <heightmap> <out.chu>")
		os.Exit(1)
	}
	src, dst := fs.Arg(0), fs.Arg(1)

	cfg, err := config.Load(flags.ConfigPath(), flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	out := &partialOutput{path: dst}
	closer.Bind(func() {
		cancel()
		out.cleanup()
		logger.Sync()
	})

	closer.Checked(func() error {
		stats, err := build(ctx, cfg, src, dst)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		out.complete()
		printStats(stats, cfg.Chunker.TreeDepth)
		return nil
	}, false)
	closer.Close()
}

// partialOutput deletes an output file at exit unless the build finished.
// complete runs on the main goroutine; cleanup may run on closer's signal
// goroutine.
type partialOutput struct {
	path string
	done atomic.Bool
}

func (p *partialOutput) complete() { p.done.Store(true) }

func (p *partialOutput) cleanup() {
	if !p.done.Load() {
		_ = os.Remove(p.path)
	}
}

// params converts the loaded config into chunker parameters.
func params(cfg *config.Config) chunklod.Params {
	return chunklod.Params{
		TreeDepth:          cfg.Chunker.TreeDepth,
		BaseMaxError:       cfg.Chunker.BaseMaxError,
		VerticalScale:      cfg.Chunker.VerticalScale,
		InputVerticalScale: cfg.Chunker.InputVerticalScale,
		Storage: heightfield.StorageOptions{
			MmapThreshold: cfg.Storage.MmapThreshold(),
			Dir:           cfg.Storage.TempDir,
		},
	}
}

// build resolves and loads the heightmap at src and writes its chunk tree to
// dst.
func build(ctx context.Context, cfg *config.Config, src, dst string) (stats chunklod.Stats, err error) {
	path, err := grid.Resolve(ctx, src, cfg.Input.CacheDir)
	if err != nil {
		return stats, err
	}
	g, err := grid.Load(path, cfg.Input.SampleSpacing, cfg.Input.HeightScale)
	if err != nil {
		return stats, err
	}

	out, err := os.Create(dst)
	if err != nil {
		return stats, fmt.Errorf("creating output: %w", err)
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	c := chunklod.New(params(cfg))
	next := 0
	c.Progress = func(percent int) bool {
		if percent >= next {
			logger.Info("progress", zap.Int("percent", percent))
			next = percent - percent%10 + 10
		}
		return false
	}

	stats, err = c.ProcessGrid(ctx, g, out)
	if errors.Is(err, chunklod.ErrChunkCapacity) {
		logger.Warn("chunk too large; try a deeper tree",
			zap.Int("depth", cfg.Chunker.TreeDepth),
			zap.Int("suggested", cfg.Chunker.TreeDepth+1))
	}
	return stats, err
}

func printStats(s chunklod.Stats, depth int) {
	fmt.Printf("Input vertices:     %d\n", s.InputVertices)
	fmt.Printf("Output vertices:    %d\n", s.OutputVertices)
	fmt.Printf("Chunks:             %d of %d\n", s.GeneratedChunks, s.TotalChunks)
	fmt.Printf("Real triangles:     %d\n", s.RealTriangles)
	fmt.Printf("Degenerate:         %d\n", s.DegenerateTriangles)
	fmt.Printf("Verts/chunk:        %.0f avg, %d max\n", s.AverageVerticesPerChunk(), s.MostVerticesPerChunk)
	fmt.Printf("Output size:        %d bytes\n", s.OutputSize)
	fmt.Printf("Bytes/input vertex: %.2f\n", s.BytesPerInputVertex())
	fmt.Printf("Bytes/output vertex: %.2f\n", s.BytesPerOutputVertex())

	if suggested := s.SuggestedDepth(depth); suggested != depth {
		fmt.Printf("\nNOTE: chunks average %.0f vertices; try -depth %d\n", s.AverageVerticesPerChunk(), suggested)
	}
}
