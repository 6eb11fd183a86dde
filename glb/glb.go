// Package glb exports tetrahedral meshes as binary glTF for viewing in
// standard 3D tools. Every tetrahedron is emitted as its 4 faces with flat
// normals and the cell color, so cell boundaries stay visible.
package glb

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/soypat/tetsort"
	"github.com/soypat/tetsort/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// MeshName is the name of the single glTF mesh written.
const MeshName = "Tetrahedra"

// faces lists each tetrahedron face as slots into the cell's index tuple.
var faces = [4][3]int{
	{0, 2, 1},
	{0, 1, 3},
	{1, 2, 3},
	{0, 3, 2},
}

// Write saves m to path as a .glb file, creating parent directories. The
// document is encoded in memory and renamed into place from a temporary file,
// so path is left untouched on error.
func Write(path string, m tetsort.Mesh) (err error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	fp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := fp.Name()
	defer func() {
		if err != nil {
			fp.Close()
			os.Remove(tmp)
		}
	}()
	if _, err = buf.WriteTo(fp); err != nil {
		return err
	}
	if err = fp.Chmod(0o644); err != nil {
		return err
	}
	if err = fp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Encode writes m as binary glTF to w.
func Encode(w io.Writer, m tetsort.Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if len(m.Indices) == 0 {
		return tetsort.ErrEmptyMesh
	}
	doc := document(m)
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}

// soup holds the unshared triangle vertices of every tetrahedron face.
type soup struct {
	positions [][3]float32
	normals   [][3]float32
	colors    [][4]float32
	indices   []uint32
}

func faceSoup(m tetsort.Mesh) soup {
	nt := len(m.Indices)
	s := soup{
		positions: make([][3]float32, 0, 12*nt),
		normals:   make([][3]float32, 0, 12*nt),
		colors:    make([][4]float32, 0, 12*nt),
		indices:   make([]uint32, 0, 12*nt),
	}
	for c, cell := range m.Indices {
		col := m.Colors[c]
		rgba := [4]float32{col[0], col[1], col[2], 1}
		var p [4]r3.Vec
		for k := range cell {
			p[k] = d3.FromVec32(m.Vertices[cell[k]])
		}
		// Orient faces outward whatever the cell's winding.
		flip := r3.Dot(r3.Sub(p[1], p[0]), r3.Cross(r3.Sub(p[2], p[0]), r3.Sub(p[3], p[0]))) < 0
		for _, f := range faces {
			a, b, cc := f[0], f[1], f[2]
			if flip {
				b, cc = cc, b
			}
			n := r3.Cross(r3.Sub(p[b], p[a]), r3.Sub(p[cc], p[a]))
			if norm := r3.Norm(n); norm > 0 {
				n = r3.Scale(1/norm, n)
			}
			n32 := d3.Vec32(n)
			for _, slot := range [3]int{a, b, cc} {
				s.indices = append(s.indices, uint32(len(s.positions)))
				s.positions = append(s.positions, m.Vertices[cell[slot]])
				s.normals = append(s.normals, n32)
				s.colors = append(s.colors, rgba)
			}
		}
	}
	return s
}

func document(m tetsort.Mesh) *gltf.Document {
	s := faceSoup(m)
	doc := gltf.NewDocument()
	doc.Asset.Generator = "tetsort"

	posAccessor := modeler.WritePosition(doc, s.positions)
	normalAccessor := modeler.WriteNormal(doc, s.normals)
	colorAccessor := modeler.WriteColor(doc, s.colors)
	indicesAccessor := modeler.WriteIndices(doc, s.indices)

	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION: posAccessor,
			gltf.NORMAL:   normalAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
		Indices:  gltf.Index(indicesAccessor),
		Material: gltf.Index(0),
	}
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	doc.Materials = []*gltf.Material{{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}
	doc.Meshes = []*gltf.Mesh{{Name: MeshName, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc
}
