// chutool builds and inspects ChunkLOD .chu terrain files.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		cmdBuild(args)
	case "info":
		cmdInfo(args)
	case "chunks", "ls":
		cmdChunks(args)
	case "verify":
		cmdVerify(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`chutool - ChunkLOD heightfield chunker

Usage:
  chutool <command> [options]

Commands:
  build [flags] <heightmap> <out.chu>  Build a chunk tree from a heightmap
  info <file.chu>                      Show file header and totals
  chunks [-level n] <file.chu>         List chunk headers
  verify <file.chu>                    Check every chunk for consistency
  config init [path]                   Write the default config file

Build flags:
  -config <path>   Config file (default: search standard locations)
  -depth <n>       Chunk tree depth
  -error <m>       Maximum geometric error at the finest level
  -vscale <m>      Meters per stored height unit
  -spacing <m>     Meters between bitmap samples
  -hscale <m>      Meters per gray level
  -debug           Enable debug logging
  -log <path>      Also write logs to a rotated file

The heightmap may be a PNG, BMP or TIFF image or a Ragnarok Online .gat
altitude table, given as a local path or any URL go-getter understands.
Remote inputs are cached between runs.

Examples:
  chutool build -depth 6 -error 0.5 crater.png crater.chu
  chutool build https://example.com/maps/crater.png crater.chu
  chutool info crater.chu
  chutool chunks -level 0 crater.chu`)
}
