package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/Faultbox/chunklod/pkg/chu"
)

func openFile(path string) *chu.File {
	f, err := chu.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return f
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: chutool info <file.chu>")
		os.Exit(1)
	}

	f := openFile(args[0])
	perLevel := make([]int, f.Header.TreeDepth)
	var vertices, indices, triangles int
	for i := range f.Chunks {
		c := &f.Chunks[i]
		if int(c.Level) < len(perLevel) {
			perLevel[c.Level]++
		}
		m, err := f.Mesh(c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		vertices += len(m.Vertices)
		indices += len(m.Indices)
		triangles += int(m.RealTriangles)
	}

	fmt.Printf("File:         %s\n", args[0])
	fmt.Printf("Version:      %d\n", f.Header.Version)
	fmt.Printf("Tree depth:   %d\n", f.Header.TreeDepth)
	fmt.Printf("Max error:    %g\n", f.Header.BaseMaxError)
	fmt.Printf("V scale:      %g\n", f.Header.VerticalScale)
	fmt.Printf("Chunk extent: %g\n", f.Header.ChunkExtent)
	fmt.Printf("Chunks:       %d\n", len(f.Chunks))
	fmt.Printf("Vertices:     %d\n", vertices)
	fmt.Printf("Indices:      %d\n", indices)
	fmt.Printf("Triangles:    %d\n", triangles)
	fmt.Printf("Size:         %.2f MB\n", float64(f.Size())/(1024*1024))
	fmt.Println()
	fmt.Println("Chunks by LOD:")
	for lod := len(perLevel) - 1; lod >= 0; lod-- {
		fmt.Printf("  %-3d %d\n", lod, perLevel[lod])
	}
}

func cmdChunks(args []string) {
	fs := flag.NewFlagSet("chunks", flag.ExitOnError)
	level := fs.Int("level", -1, "Only list chunks at this LOD (-1 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: chutool chunks [-level n] <file.chu>")
		os.Exit(1)
	}

	f := openFile(fs.Arg(0))
	fmt.Printf("%-6s %-3s %-11s %-13s %-8s %-8s %-8s %-8s\n",
		"label", "lod", "x,z", "y range", "east", "north", "west", "south")
	for i := range f.Chunks {
		c := &f.Chunks[i]
		if *level >= 0 && int(c.Level) != *level {
			continue
		}
		fmt.Printf("%-6d %-3d %-11s %-13s %-8s %-8s %-8s %-8s\n",
			c.Label, c.Level,
			fmt.Sprintf("%d,%d", c.X, c.Z),
			fmt.Sprintf("%d..%d", c.MinY, c.MaxY),
			neighborLabel(c, chu.East), neighborLabel(c, chu.North),
			neighborLabel(c, chu.West), neighborLabel(c, chu.South))
	}
}

func neighborLabel(c *chu.ChunkHeader, d chu.Direction) string {
	if n := c.Neighbor(d); n != chu.NoNeighbor {
		return fmt.Sprint(n)
	}
	return "-"
}

func cmdVerify(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: chutool verify <file.chu>")
		os.Exit(1)
	}

	f := openFile(args[0])
	if err := f.Verify(); err != nil {
		problems := multierr.Errors(err)
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, p)
		}
		fmt.Fprintf(os.Stderr, "\n%d problems found\n", len(problems))
		os.Exit(1)
	}
	fmt.Printf("OK: %d chunks\n", len(f.Chunks))
}
