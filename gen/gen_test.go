package gen

import (
	"math"
	"testing"

	"github.com/soypat/tetsort"
	"github.com/soypat/tetsort/internal/d3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestTets(t *testing.T) {
	m := Tets(2)
	require.NoError(t, m.Validate())
	require.Len(t, m.Vertices, 8)
	require.Len(t, m.Colors, 2)
	assert.Equal(t, [][4]uint32{{0, 1, 2, 3}, {4, 5, 6, 7}}, m.Indices)
	assert.Equal(t, [][3]float32{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{2, 0, 0}, {3, 0, 0}, {2, 1, 0}, {2, 0, 1},
	}, m.Vertices)
	assert.Equal(t, [4]float32{1, 0.5, 0.5, 40}, m.Colors[0])
	assert.Equal(t, [4]float32{0.5, 1, 0.5, 40}, m.Colors[1])

	assert.Equal(t, tetsort.Mesh{}, Tets(0))
	assert.Equal(t, [4]float32{0.5, 0.5, 1, 40}, Tets(3).Colors[2])
}

func TestSphere(t *testing.T) {
	const (
		nu, nv = 16, 8
		r      = 2.0
	)
	m := Sphere(nu, nv, r)
	require.NoError(t, m.Validate())
	require.Len(t, m.Vertices, 5*nu*nv)
	require.Len(t, m.Indices, 2*nu*nv)
	for i, v := range m.Vertices {
		radius := r3.Norm(d3.FromVec32(v))
		want := r
		if i%5 == 4 {
			want = 0.75 * r
		}
		assert.InDelta(t, want, radius, 1e-5, "vertex %d", i)
	}
	// First patch starts at the +Y pole.
	assert.InDelta(t, r, m.Vertices[0][1], 1e-6)
	assert.Equal(t, [4]uint32{0, 1, 2, 4}, m.Indices[0])
	assert.Equal(t, [4]uint32{1, 3, 2, 4}, m.Indices[1])
	assert.Equal(t, [4]float32{0, 0, 0.5, 40}, m.Colors[0])
	assert.Equal(t, [4]float32{0.5 / nu, 0.5 / nv, 0.5, 40}, m.Colors[1])

	assert.Empty(t, Sphere(0, 4, 1).Vertices)
}

func TestBCC(t *testing.T) {
	box := r3.Box{Max: d3.Elem(3)}
	m, err := BCC(box, 1)
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	// 27 cell centers plus a 4x4x4 grid of shared corners.
	assert.Len(t, m.Vertices, 27+64)
	// 18 face-adjacent cell pairs per axis, 4 tetrahedra per pair.
	assert.Len(t, m.Indices, 3*18*4)

	seen := make(map[[3]float32]int)
	for i, v := range m.Vertices {
		if j, ok := seen[v]; ok {
			t.Fatalf("vertices %d and %d are duplicates at %v", j, i, v)
		}
		seen[v] = i
		assert.True(t, d3.Box(box).Contains(d3.FromVec32(v)), "vertex %d outside box", i)
	}
	for c, cell := range m.Indices {
		p := [4]r3.Vec{}
		for k := range cell {
			p[k] = d3.FromVec32(m.Vertices[cell[k]])
		}
		vol := r3.Dot(r3.Sub(p[1], p[0]), r3.Cross(r3.Sub(p[2], p[0]), r3.Sub(p[3], p[0]))) / 6
		assert.InDelta(t, 1.0/12, math.Abs(vol), 1e-9, "tetrahedron %d volume", c)
		col := m.Colors[c]
		for k := 0; k < 3; k++ {
			assert.True(t, col[k] >= 0 && col[k] <= 1, "tetrahedron %d color %v", c, col)
		}
	}
}

func TestBCCErrors(t *testing.T) {
	box := r3.Box{Max: d3.Elem(1)}
	_, err := BCC(box, 0.5)
	assert.Error(t, err)
	_, err = BCC(box, 0)
	assert.Error(t, err)
	_, err = BCC(box, math.NaN())
	assert.Error(t, err)
}
