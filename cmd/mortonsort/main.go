// Command mortonsort reorders the vertices of a tetrahedral PLY mesh along a
// Morton (Z-order) curve so that cells referencing nearby vertices also
// reference nearby memory.
//
//	mortonsort [flags] input.ply output.ply
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/soypat/tetsort"
	"github.com/soypat/tetsort/glb"
	"github.com/soypat/tetsort/ply"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [input_path] [output_path]\n", os.Args[0])
	flag.PrintDefaults()
}

type options struct {
	input, output string
	glbPath       string
	verify        bool
}

func main() {
	var (
		opts    options
		verbose bool
		jsonLog bool
	)
	flag.Usage = usage
	flag.BoolVar(&verbose, "v", false, "Log debug information.")
	flag.BoolVar(&jsonLog, "json", false, "Write logs as JSON.")
	flag.BoolVar(&opts.verify, "verify", false, "Check that the reordered mesh references the same geometry as the input.")
	flag.StringVar(&opts.glbPath, "glb", "", "Also export the reordered mesh as binary glTF to this path.")
	flag.Parse()

	if flag.NArg() < 2 {
		usage()
		os.Exit(1)
	}
	opts.input, opts.output = flag.Arg(0), flag.Arg(1)
	log := newLogger(verbose, jsonLog)
	if err := run(log, opts); err != nil {
		log.Error("mortonsort failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(verbose, jsonLog bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if jsonLog {
		return slog.New(slog.NewJSONHandler(os.Stderr, hopts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, hopts))
}

var errVerify = errors.New("reordered mesh does not match input")

func run(log *slog.Logger, opts options) error {
	start := time.Now()
	m, err := ply.Load(opts.input)
	if err != nil {
		return err
	}
	log.Info("loaded mesh", "path", opts.input, "vertices", m.NumVertices(), "tetrahedra", m.NumCells())
	if bb, err := m.Bounds(); err == nil {
		log.Debug("mesh bounds", "min", bb.Min, "max", bb.Max)
	}

	sorted, stats, err := tetsort.ReorderWithStats(m)
	if err != nil {
		return err
	}
	log.Info("reordered vertices",
		"moved", stats.Moved,
		"span_before", stats.SpanBefore,
		"span_after", stats.SpanAfter,
	)

	if opts.verify {
		want, err := tetsort.Fingerprint(m)
		if err != nil {
			return err
		}
		got, err := tetsort.Fingerprint(sorted)
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("%w: digest %+v, want %+v", errVerify, got, want)
		}
		log.Debug("verified digest", "cells", fmt.Sprintf("%016x", got.Cells), "vertices", fmt.Sprintf("%016x", got.Vertices))
	}

	// glTF export rejects meshes without cells. Written first and removed
	// again if the PLY write fails.
	if opts.glbPath != "" {
		if err := glb.Write(opts.glbPath, sorted); err != nil {
			return err
		}
		log.Info("wrote glTF", "path", opts.glbPath)
	}
	if err := ply.Write(opts.output, sorted); err != nil {
		if opts.glbPath != "" {
			os.Remove(opts.glbPath)
		}
		return err
	}
	log.Info("wrote mesh", "path", opts.output, "elapsed", time.Since(start))
	return nil
}
