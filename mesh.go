package tetsort

import (
	"fmt"

	"github.com/soypat/tetsort/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a tetrahedral mesh in the layout stored by the PLY files this
// module reads and writes.
//
// Vertices holds V positions; a vertex's identity is its position in the slice.
// Colors and Indices both hold T entries, one per tetrahedron: the r,g,b color
// plus the scalar s attribute, and the 4 vertex indices of the cell.
type Mesh struct {
	Vertices [][3]float32
	Colors   [][4]float32
	Indices  [][4]uint32
}

// NumVertices returns V.
func (m Mesh) NumVertices() int { return len(m.Vertices) }

// NumCells returns T.
func (m Mesh) NumCells() int { return len(m.Indices) }

// Validate checks that color and index arrays agree in length and that
// every index references an existing vertex. Out of range indices are
// reported as *IndexError.
func (m Mesh) Validate() error {
	if len(m.Colors) != len(m.Indices) {
		return fmt.Errorf("%w: %d colors for %d tetrahedra", ErrMalformed, len(m.Colors), len(m.Indices))
	}
	nv := len(m.Vertices)
	for c, cell := range m.Indices {
		for s, idx := range cell {
			if uint64(idx) >= uint64(nv) {
				return &IndexError{Cell: c, Slot: s, Index: idx, Vertices: nv}
			}
		}
	}
	return nil
}

// Bounds returns the axis aligned bounding box of the vertex set.
func (m Mesh) Bounds() (r3.Box, error) {
	if len(m.Vertices) == 0 {
		return r3.Box{}, ErrEmptyMesh
	}
	return r3.Box(d3.BoundingBox(d3.SetFrom32(m.Vertices))), nil
}

// Clone returns a deep copy of m.
func (m Mesh) Clone() Mesh {
	return Mesh{
		Vertices: append([][3]float32(nil), m.Vertices...),
		Colors:   append([][4]float32(nil), m.Colors...),
		Indices:  append([][4]uint32(nil), m.Indices...),
	}
}
