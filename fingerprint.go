package tetsort

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Digest identifies mesh content independently of vertex order.
type Digest struct {
	// Cells hashes, in cell order, each tetrahedron's color followed by the
	// positions of its four vertices in slot order.
	Cells uint64
	// Vertices is the wrapping sum of the hash of every vertex position.
	Vertices uint64
}

// Fingerprint returns the Digest of m. Two meshes related by Reorder have
// equal digests: a vertex permutation with consistently remapped indices
// changes neither what each cell references nor the vertex multiset.
func Fingerprint(m Mesh) (Digest, error) {
	if err := m.Validate(); err != nil {
		return Digest{}, err
	}
	var (
		d    Digest
		cell [16 + 4*12]byte
		vert [12]byte
	)
	h := xxhash.New()
	for c, idx := range m.Indices {
		putF32s(cell[:], m.Colors[c][:])
		for s := range idx {
			putF32s(cell[16+12*s:], m.Vertices[idx[s]][:])
		}
		h.Write(cell[:])
	}
	d.Cells = h.Sum64()
	for _, v := range m.Vertices {
		putF32s(vert[:], v[:])
		d.Vertices += xxhash.Sum64(vert[:])
	}
	return d, nil
}

func putF32s(b []byte, f []float32) {
	for i, v := range f {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
}
