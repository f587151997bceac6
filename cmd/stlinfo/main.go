// stlinfo is a CLI utility for inspecting and generating binary STL files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ulassi/stl2png/pkg/geometry"
	"github.com/ulassi/stl2png/pkg/stl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "dump":
		cmdDump(args)
	case "gen":
		cmdGen(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`stlinfo - binary STL utility

Usage:
  stlinfo <command> [options]

Commands:
  info <file.stl>                         Show facet count, bounds and fit
  dump [-n N] <file.stl>                  List facets (first N, 0 = all)
  gen [-shape cube|tetra] [-size S] <out> Write a sample mesh

Examples:
  stlinfo info part.stl
  stlinfo dump -n 10 part.stl
  stlinfo gen -shape tetra sample.stl`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	acceptSolid := fs.Bool("accept-solid", false, `Decode files whose header contains "solid"`)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: stlinfo info [-accept-solid] <file.stl>")
		os.Exit(1)
	}

	path := fs.Arg(0)
	mesh, err := stl.Decoder{AcceptSolidHeader: *acceptSolid}.ReadFile(path)
	if err != nil {
		fail(err)
	}

	res := geometry.Process(mesh)
	ext := res.Extent
	size := ext.Size()

	fmt.Printf("File:        %s\n", path)
	fmt.Printf("Header:      %q\n", mesh.HeaderText())
	fmt.Printf("Facets:      %d\n", len(mesh.Triangles))
	fmt.Printf("Min:         (%g, %g, %g)\n", ext.Min.X, ext.Min.Y, ext.Min.Z)
	fmt.Printf("Max:         (%g, %g, %g)\n", ext.Max.X, ext.Max.Y, ext.Max.Z)
	fmt.Printf("Size:        %g x %g x %g\n", size.X, size.Y, size.Z)
	fmt.Printf("Centroid:    (%g, %g, %g)\n", ext.Centroid.X, ext.Centroid.Y, ext.Centroid.Z)
	fmt.Printf("Fit scale:   %g\n", res.Transform.Scale)
	fmt.Printf("Recomputed:  %d normals\n", res.Stats.Recomputed)
	if res.Stats.Degenerate > 0 {
		fmt.Printf("Degenerate:  %d facets\n", res.Stats.Degenerate)
	}
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	limit := fs.Int("n", 0, "Number of facets to list (0 = all)")
	acceptSolid := fs.Bool("accept-solid", false, `Decode files whose header contains "solid"`)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: stlinfo dump [-n N] <file.stl>")
		os.Exit(1)
	}

	mesh, err := stl.Decoder{AcceptSolidHeader: *acceptSolid}.ReadFile(fs.Arg(0))
	if err != nil {
		fail(err)
	}

	tris := mesh.Triangles
	if *limit > 0 && *limit < len(tris) {
		tris = tris[:*limit]
	}

	for i, t := range tris {
		n := t.Normal
		fmt.Printf("%6d  n=(%g, %g, %g)  attr=%d\n", i, n.X, n.Y, n.Z, t.Attribute)
		for _, v := range t.Vertices {
			fmt.Printf("        v=(%g, %g, %g)\n", v.X, v.Y, v.Z)
		}
	}
	if len(tris) < len(mesh.Triangles) {
		fmt.Printf("... %d more\n", len(mesh.Triangles)-len(tris))
	}
}

func cmdGen(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	shape := fs.String("shape", "cube", "Shape: cube or tetra")
	size := fs.Float64("size", 1, "Edge length")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: stlinfo gen [-shape cube|tetra] [-size S] <out.stl>")
		os.Exit(1)
	}

	var mesh *stl.Mesh
	switch strings.ToLower(*shape) {
	case "cube":
		mesh = stl.Cube(float32(*size))
	case "tetra", "tetrahedron":
		mesh = stl.Tetrahedron(float32(*size))
	default:
		fail(fmt.Errorf("unknown shape %q", *shape))
	}

	out := fs.Arg(0)
	if err := stl.WriteFile(out, mesh); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s (%d facets)\n", out, len(mesh.Triangles))
}
