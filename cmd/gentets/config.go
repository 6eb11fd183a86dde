package main

import (
	"errors"
	"fmt"

	"github.com/soypat/tetsort"
	"github.com/soypat/tetsort/gen"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/gcfg.v1"
)

const exampleConfig = `[generator]
# One of tets, sphere or bcc.
Kind = sphere
# Number of disjoint tetrahedra for Kind = tets.
N = 2
# Sphere patches along u and v.
Nu = 16
Nv = 8
# Sphere radius, or half the side of the cube filled by bcc.
R = 1
# Lattice cell side for bcc.
Res = 0.25
`

type generatorConfig struct {
	Kind string
	N    int
	Nu   int
	Nv   int
	R    float64
	Res  float64
}

type fileConfig struct {
	Generator generatorConfig
}

func defaultConfig() generatorConfig {
	return generatorConfig{Kind: "sphere", N: 2, Nu: 16, Nv: 8, R: 1, Res: 0.25}
}

// readConfig returns base updated with the values present in the gcfg file
// at fname. Keys missing from the file keep their base value.
func readConfig(fname string, base generatorConfig) (generatorConfig, error) {
	fc := fileConfig{Generator: base}
	if err := gcfg.ReadFileInto(&fc, fname); err != nil {
		return base, err
	}
	return fc.Generator, nil
}

// override copies the fields named in set from src into dst. Names are the
// command line flag names.
func override(dst *generatorConfig, src generatorConfig, set map[string]bool) {
	if set["kind"] {
		dst.Kind = src.Kind
	}
	if set["n"] {
		dst.N = src.N
	}
	if set["nu"] {
		dst.Nu = src.Nu
	}
	if set["nv"] {
		dst.Nv = src.Nv
	}
	if set["r"] {
		dst.R = src.R
	}
	if set["res"] {
		dst.Res = src.Res
	}
}

var errBadConfig = errors.New("bad generator config")

func (c generatorConfig) generate() (tetsort.Mesh, error) {
	switch c.Kind {
	case "tets":
		if c.N <= 0 {
			return tetsort.Mesh{}, fmt.Errorf("%w: N = %d, want > 0", errBadConfig, c.N)
		}
		return gen.Tets(c.N), nil
	case "sphere":
		if c.Nu <= 0 || c.Nv <= 0 {
			return tetsort.Mesh{}, fmt.Errorf("%w: Nu, Nv = %d, %d, want > 0", errBadConfig, c.Nu, c.Nv)
		}
		if !(c.R > 0) {
			return tetsort.Mesh{}, fmt.Errorf("%w: R = %g, want > 0", errBadConfig, c.R)
		}
		return gen.Sphere(c.Nu, c.Nv, c.R), nil
	case "bcc":
		if !(c.R > 0) {
			return tetsort.Mesh{}, fmt.Errorf("%w: R = %g, want > 0", errBadConfig, c.R)
		}
		box := r3.Box{
			Min: r3.Vec{X: -c.R, Y: -c.R, Z: -c.R},
			Max: r3.Vec{X: c.R, Y: c.R, Z: c.R},
		}
		return gen.BCC(box, c.Res)
	}
	return tetsort.Mesh{}, fmt.Errorf("%w: unknown kind %q", errBadConfig, c.Kind)
}
