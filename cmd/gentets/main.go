// Command gentets writes synthetic tetrahedral meshes in PLY format, for
// use as mortonsort input.
//
//	gentets [flags] output.ply
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/soypat/tetsort/ply"
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [flags] [output_path]\n", os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintf(out, "\nExample -config file:\n\n%s", exampleConfig)
}

func main() {
	var (
		cfgPath string
		verbose bool
	)
	cfg := defaultConfig()
	flag.Usage = usage
	flag.StringVar(&cfgPath, "config", "", "Read generator parameters from a gcfg file. Flags given on the command line take precedence.")
	flag.BoolVar(&verbose, "v", false, "Log debug information.")
	flag.StringVar(&cfg.Kind, "kind", cfg.Kind, "Mesh kind: tets, sphere or bcc.")
	flag.IntVar(&cfg.N, "n", cfg.N, "Number of tetrahedra for -kind=tets.")
	flag.IntVar(&cfg.Nu, "nu", cfg.Nu, "Sphere patches along u.")
	flag.IntVar(&cfg.Nv, "nv", cfg.Nv, "Sphere patches along v.")
	flag.Float64Var(&cfg.R, "r", cfg.R, "Sphere radius or bcc cube half side.")
	flag.Float64Var(&cfg.Res, "res", cfg.Res, "bcc lattice cell side.")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if cfgPath != "" {
		set := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		fromFile, err := readConfig(cfgPath, defaultConfig())
		if err != nil {
			log.Error("reading config", "path", cfgPath, "error", err)
			os.Exit(1)
		}
		override(&fromFile, cfg, set)
		cfg = fromFile
	}
	log.Debug("generator config", "config", cfg)

	m, err := cfg.generate()
	if err != nil {
		log.Error("generating mesh", "error", err)
		os.Exit(1)
	}
	path := flag.Arg(0)
	if err := ply.Write(path, m); err != nil {
		log.Error("writing mesh", "path", path, "error", err)
		os.Exit(1)
	}
	log.Info("wrote mesh", "path", path, "kind", cfg.Kind, "vertices", m.NumVertices(), "tetrahedra", m.NumCells())
}
