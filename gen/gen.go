// Package gen builds synthetic tetrahedral meshes for exercising the
// reordering pipeline.
package gen

import (
	"math"

	"github.com/soypat/tetsort"
	"github.com/soypat/tetsort/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultStiffness is the s attribute given to generated tetrahedra.
const DefaultStiffness = 40

// Tets returns n disjoint unit corner tetrahedra laid out along the x axis
// two units apart. Tetrahedron i uses vertices 4i..4i+3; its color is mid
// gray with channel i%3 saturated.
func Tets(n int) tetsort.Mesh {
	if n <= 0 {
		return tetsort.Mesh{}
	}
	m := tetsort.Mesh{
		Vertices: make([][3]float32, 0, 4*n),
		Colors:   make([][4]float32, 0, n),
		Indices:  make([][4]uint32, 0, n),
	}
	for i := 0; i < n; i++ {
		base := [3]float32{float32(i) * 2, 0, 0}
		m.Vertices = append(m.Vertices, base)
		for axis := 0; axis < 3; axis++ {
			v := base
			v[axis]++
			m.Vertices = append(m.Vertices, v)
		}
		c := [4]float32{0.5, 0.5, 0.5, DefaultStiffness}
		c[i%3] = 1
		m.Colors = append(m.Colors, c)
		v0 := uint32(4 * i)
		m.Indices = append(m.Indices, [4]uint32{v0, v0 + 1, v0 + 2, v0 + 3})
	}
	return m
}

// Sphere returns a shell of tetrahedra around the origin. The sphere's
// UV parametrization is split in nu×nv patches; each patch contributes its
// four corners on the sphere of radius r and a center point at radius 0.75r,
// and two tetrahedra joining the patch's triangles to the center point.
// The v direction runs from the +Y pole to the -Y pole.
func Sphere(nu, nv int, r float64) tetsort.Mesh {
	if nu <= 0 || nv <= 0 {
		return tetsort.Mesh{}
	}
	cells := 2 * nu * nv
	m := tetsort.Mesh{
		Vertices: make([][3]float32, 0, 5*nu*nv),
		Colors:   make([][4]float32, 0, cells),
		Indices:  make([][4]uint32, 0, cells),
	}
	inv := d3.DivElem(d3.Elem(1), r3.Vec{X: float64(nu), Y: float64(nv), Z: 1})
	uvw := func(u, v, w float64) r3.Vec {
		return sphericalUVToCartesian(d3.MulElem(r3.Vec{X: u, Y: v, Z: w}, inv), r)
	}
	for i := 0; i < nu; i++ {
		fi := float64(i)
		for j := 0; j < nv; j++ {
			fj := float64(j)
			v0 := uint32(len(m.Vertices))
			m.Vertices = append(m.Vertices,
				d3.Vec32(uvw(fi, fj, 1)),
				d3.Vec32(uvw(fi+1, fj, 1)),
				d3.Vec32(uvw(fi, fj+1, 1)),
				d3.Vec32(uvw(fi+1, fj+1, 1)),
				d3.Vec32(uvw(fi+0.5, fj+0.5, 0.75)),
			)
			m.Colors = append(m.Colors,
				[4]float32{float32(fi * inv.X), float32(fj * inv.Y), 0.5, DefaultStiffness},
				[4]float32{float32((fi + 0.5) * inv.X), float32((fj + 0.5) * inv.Y), 0.5, DefaultStiffness},
			)
			m.Indices = append(m.Indices,
				[4]uint32{v0 + 0, v0 + 1, v0 + 2, v0 + 4},
				[4]uint32{v0 + 1, v0 + 3, v0 + 2, v0 + 4},
			)
		}
	}
	return m
}

// sphericalUVToCartesian maps p=(u, v, radial scale) with u, v in [0,1] to a
// point with azimuth 2πu and polar angle πv measured from +Y.
func sphericalUVToCartesian(p r3.Vec, r float64) r3.Vec {
	sinPhi, cosPhi := math.Sincos(p.X * 2 * math.Pi)
	sinTheta, cosTheta := math.Sincos(p.Y * math.Pi)
	rr := r * p.Z
	return r3.Vec{
		X: rr * sinTheta * cosPhi,
		Y: rr * cosTheta,
		Z: rr * sinTheta * sinPhi,
	}
}
