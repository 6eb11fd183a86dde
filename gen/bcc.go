package gen

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/tetsort"
	"github.com/soypat/tetsort/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// BCC fills box with a body centered cubic lattice of tetrahedra.
// The box is divided in cubic cells of side resolution; every cell
// contributes a center vertex and shares its corner vertices with its
// neighbors. Each pair of face-adjacent cells is joined by 4 tetrahedra
// built on the shared face and both cell centers, which yields an
// isotropic mesh. See Tetrahedral Mesh Generation for Deformable Bodies,
// Molino, Bridson, Fedkiw.
//
// Tetrahedra are colored by their centroid's relative position in box.
// At least 3 cells are required along each axis.
func BCC(box r3.Box, resolution float64) (tetsort.Mesh, error) {
	if !(resolution > 0) || math.IsInf(resolution, 0) {
		return tetsort.Mesh{}, fmt.Errorf("invalid BCC resolution %g", resolution)
	}
	sz := d3.Box(box).Size()
	div := [3]int{
		int(math.Ceil(sz.X / resolution)),
		int(math.Ceil(sz.Y / resolution)),
		int(math.Ceil(sz.Z / resolution)),
	}
	if div[0] < 3 || div[1] < 3 || div[2] < 3 {
		return tetsort.Mesh{}, errors.New("BCC resolution too low for box: need 3 cells per axis")
	}
	// Each cell has 1 center node and at most 8 corner nodes.
	if nodes := float64(div[0]) * float64(div[1]) * float64(div[2]) * 9; nodes > math.MaxUint32 {
		return tetsort.Mesh{}, fmt.Errorf("BCC lattice of %dx%dx%d cells exceeds uint32 vertex indices", div[0], div[1], div[2])
	}
	lattice := makeBCCLattice(box, div, resolution)
	nodes, tetras := lattice.mesh()

	bb := d3.Box(box)
	m := tetsort.Mesh{
		Vertices: make([][3]float32, len(nodes)),
		Colors:   make([][4]float32, len(tetras)),
		Indices:  make([][4]uint32, len(tetras)),
	}
	for i, n := range nodes {
		m.Vertices[i] = d3.Vec32(n)
	}
	for i, tet := range tetras {
		var ctr r3.Vec
		for k, nod := range tet {
			m.Indices[i][k] = uint32(nod)
			ctr = r3.Add(ctr, nodes[nod])
		}
		rel := bb.Relative(r3.Scale(0.25, ctr))
		m.Colors[i] = [4]float32{float32(rel.X), float32(rel.Y), float32(rel.Z), DefaultStiffness}
	}
	return m, nil
}

type bccLattice struct {
	nodes      []bccNode
	div        [3]int
	resolution float64
}

type bccidx int

// Corner slots in d3.Box.Vertices order, then the cell center.
const (
	i000 bccidx = iota
	ix00
	ixy0
	i0y0
	i00z
	ix0z
	ixyz
	i0yz
	ictr
	nBCC
)

var unmeshed = [nBCC]int{-1, -1, -1 /**/, -1, -1, -1 /**/, -1, -1, -1}

type bccNode struct {
	// Vertex indices of corners and center, -1 until meshed.
	bccnod [nBCC]int
	pos    r3.Vec
	xp     *bccNode
	xm     *bccNode
	yp     *bccNode
	ym     *bccNode
	zp     *bccNode
	zm     *bccNode
	l      *bccLattice
}

func (n *bccNode) nodeAt(idx bccidx) int {
	if n == nil {
		return -1
	}
	return n.bccnod[idx]
}

// neighborNode returns the vertex index of corner idx if a face neighbor
// already meshed it, or -1.
func (n *bccNode) neighborNode(idx bccidx) int {
	var nx, ny, nz int
	switch idx {
	case ictr:
		return -1
	case i000:
		nx = n.xm.nodeAt(ix00)
		ny = n.ym.nodeAt(i0y0)
		nz = n.zm.nodeAt(i00z)
	case ix00:
		nx = n.xp.nodeAt(i000)
		ny = n.ym.nodeAt(ixy0)
		nz = n.zm.nodeAt(ix0z)
	case ixy0:
		nx = n.xp.nodeAt(i0y0)
		ny = n.yp.nodeAt(ix00)
		nz = n.zm.nodeAt(ixyz)
	case i0y0:
		nx = n.xm.nodeAt(ixy0)
		ny = n.yp.nodeAt(i000)
		nz = n.zm.nodeAt(i0yz)
	case i00z:
		nx = n.xm.nodeAt(ix0z)
		ny = n.ym.nodeAt(i0yz)
		nz = n.zp.nodeAt(i000)
	case ix0z:
		nx = n.xp.nodeAt(i00z)
		ny = n.ym.nodeAt(ixyz)
		nz = n.zp.nodeAt(ix00)
	case ixyz:
		nx = n.xp.nodeAt(i0yz)
		ny = n.yp.nodeAt(ix0z)
		nz = n.zp.nodeAt(ixy0)
	case i0yz:
		nx = n.xm.nodeAt(ixyz)
		ny = n.yp.nodeAt(i00z)
		nz = n.zp.nodeAt(i0y0)
	}
	bad := nx >= 0 && ny >= 0 && nx != ny ||
		nx >= 0 && nz >= 0 && nx != nz ||
		nz >= 0 && ny >= 0 && nz != ny
	if bad {
		panic("bug: BCC neighbors disagree on shared corner")
	}
	return max(nx, max(ny, nz))
}

func makeBCCLattice(b r3.Box, div [3]int, resolution float64) *bccLattice {
	l := &bccLattice{
		nodes:      make([]bccNode, div[0]*div[1]*div[2]),
		div:        div,
		resolution: resolution,
	}
	for i := 0; i < div[0]; i++ {
		x := (float64(i)+0.5)*resolution + b.Min.X
		for j := 0; j < div[1]; j++ {
			y := (float64(j)+0.5)*resolution + b.Min.Y
			for k := 0; k < div[2]; k++ {
				z := (float64(k)+0.5)*resolution + b.Min.Z
				l.set(i, j, k, bccNode{pos: r3.Vec{X: x, Y: y, Z: z}, l: l, bccnod: unmeshed})
			}
		}
	}
	return l
}

// mesh assigns vertex indices to every node and returns the vertex
// positions and tetrahedra of the lattice.
func (l *bccLattice) mesh() (nodes []r3.Vec, tetras [][4]int) {
	n := 0
	tetras = make([][4]int, 0, 12*len(l.nodes))
	l.foreach(func(_, _, _ int, node *bccNode) {
		bb := node.box()
		vert := bb.Vertices()
		node.bccnod[ictr] = n
		n++
		nodes = append(nodes, bb.Center())
		for in := i000; in < ictr; in++ {
			v := node.neighborNode(in)
			if v == -1 {
				node.bccnod[in] = n
				n++
				nodes = append(nodes, vert[in])
			} else {
				node.bccnod[in] = v
			}
		}
		tetras = append(tetras, node.tetras()...)
	})
	return nodes, tetras
}

// exists reports whether n is a lattice cell. Safe on nil.
func (n *bccNode) exists() bool {
	return n != nil && n.l != nil
}

func (n *bccNode) box() d3.Box {
	return d3.CenteredBox(n.pos, d3.Elem(n.l.resolution))
}

func (l *bccLattice) set(i, j, k int, n bccNode) {
	na := l.at(i, j, k)
	*na = n
	na.xm = l.at(i-1, j, k)
	if na.xm.exists() {
		na.xm.xp = na
	}
	na.xp = l.at(i+1, j, k)
	if na.xp.exists() {
		na.xp.xm = na
	}
	na.ym = l.at(i, j-1, k)
	if na.ym.exists() {
		na.ym.yp = na
	}
	na.yp = l.at(i, j+1, k)
	if na.yp.exists() {
		na.yp.ym = na
	}
	na.zm = l.at(i, j, k-1)
	if na.zm.exists() {
		na.zm.zp = na
	}
	na.zp = l.at(i, j, k+1)
	if na.zp.exists() {
		na.zp.zm = na
	}
}

func (l *bccLattice) at(i, j, k int) *bccNode {
	if i < 0 || j < 0 || k < 0 || i >= l.div[0] || j >= l.div[1] || k >= l.div[2] {
		return nil
	}
	return &l.nodes[i*l.div[1]*l.div[2]+j*l.div[2]+k]
}

func (l *bccLattice) foreach(f func(i, j, k int, nod *bccNode)) {
	for i := 0; i < l.div[0]; i++ {
		ii := i * l.div[1] * l.div[2]
		for j := 0; j < l.div[1]; j++ {
			jj := j * l.div[2]
			for k := 0; k < l.div[2]; k++ {
				f(i, j, k, &l.nodes[ii+jj+k])
			}
		}
	}
}

// tetras joins node to its already meshed minus-side neighbors.
func (n *bccNode) tetras() (tetras [][4]int) {
	nctr := n.bccnod[ictr]
	if n.zm.exists() && n.zm.bccnod[ictr] >= 0 {
		zctr := n.zm.bccnod[ictr]
		tetras = append(tetras,
			[4]int{nctr, n.bccnod[i000], n.bccnod[ix00], zctr},
			[4]int{nctr, n.bccnod[ix00], n.bccnod[ixy0], zctr},
			[4]int{nctr, n.bccnod[ixy0], n.bccnod[i0y0], zctr},
			[4]int{nctr, n.bccnod[i0y0], n.bccnod[i000], zctr},
		)
	}
	if n.ym.exists() && n.ym.bccnod[ictr] >= 0 {
		yctr := n.ym.bccnod[ictr]
		tetras = append(tetras,
			[4]int{nctr, n.bccnod[ix00], n.bccnod[i000], yctr},
			[4]int{nctr, n.bccnod[ix0z], n.bccnod[ix00], yctr},
			[4]int{nctr, n.bccnod[i00z], n.bccnod[ix0z], yctr},
			[4]int{nctr, n.bccnod[i000], n.bccnod[i00z], yctr},
		)
	}
	if n.xm.exists() && n.xm.bccnod[ictr] >= 0 {
		xctr := n.xm.bccnod[ictr]
		tetras = append(tetras,
			[4]int{nctr, n.bccnod[i000], n.bccnod[i0y0], xctr},
			[4]int{nctr, n.bccnod[i00z], n.bccnod[i000], xctr},
			[4]int{nctr, n.bccnod[i0yz], n.bccnod[i00z], xctr},
			[4]int{nctr, n.bccnod[i0y0], n.bccnod[i0yz], xctr},
		)
	}
	return tetras
}
