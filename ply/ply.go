// Package ply reads and writes tetrahedral meshes in the PLY layout used by
// the tetrahedron renderer: a vertex element with float x, y, z and a
// tetrahedron element with float r, g, b, s and a vertex_indices list of 4
// uint entries.
//
// Files whose name ends in .zst are zstd compressed on write. Load detects
// zstd compressed input by its frame magic regardless of the file name.
package ply

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/soypat/tetsort"
)

// ListLengthError reports a list property with an unexpected number of entries.
// It unwraps to tetsort.ErrMalformed.
type ListLengthError struct {
	Element  string
	Property string
	Row      int
	Len      int
	Want     int
}

func (e *ListLengthError) Error() string {
	return fmt.Sprintf("ply: %s %d: %s has %d entries, want %d", e.Element, e.Row, e.Property, e.Len, e.Want)
}

func (e *ListLengthError) Unwrap() error { return tetsort.ErrMalformed }

// CompressedExt is the file extension that selects zstd compression in Write.
const CompressedExt = ".zst"

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Load reads the mesh stored at path.
func Load(path string) (tetsort.Mesh, error) {
	fp, err := os.Open(path)
	if err != nil {
		return tetsort.Mesh{}, err
	}
	defer fp.Close()
	br := bufio.NewReader(fp)
	var r io.Reader = br
	if magic, _ := br.Peek(len(zstdMagic)); bytes.Equal(magic, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return tetsort.Mesh{}, err
		}
		defer dec.Close()
		r = dec
	}
	m, err := Decode(r)
	if err != nil {
		return tetsort.Mesh{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return m, nil
}

// Write stores m at path creating parent directories as needed. The file is
// first written to a temporary file in the same directory and renamed into
// place, so path is either left untouched or holds the complete mesh.
func Write(path string, m tetsort.Mesh) (err error) {
	if err := m.Validate(); err != nil {
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
	if strings.HasSuffix(path, CompressedExt) {
		enc, err := zstd.NewWriter(fp, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		if err := Encode(enc, m); err != nil {
			enc.Close()
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	} else if err := Encode(fp, m); err != nil {
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

// Header returns the PLY header Encode writes for a mesh with the given
// number of vertices and tetrahedra.
func Header(vertices, tetrahedra int) string {
	return fmt.Sprintf(`ply
format binary_little_endian 1.0
element vertex %d
property float x
property float y
property float z
element tetrahedron %d
property float r
property float g
property float b
property float s
property list uchar uint vertex_indices
end_header
`, vertices, tetrahedra)
}

const (
	vertexSize = 3 * 4
	// 4 floats, count byte and 4 indices.
	tetraSize = 4*4 + 1 + 4*4
)

// Encode writes m as binary little endian PLY. m is not validated.
func Encode(w io.Writer, m tetsort.Mesh) error {
	if len(m.Colors) != len(m.Indices) {
		return errors.New("ply: colors and indices length mismatch")
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header(len(m.Vertices), len(m.Indices))); err != nil {
		return err
	}
	var vb [vertexSize]byte
	for _, v := range m.Vertices {
		put3F32(vb[:], v)
		if _, err := bw.Write(vb[:]); err != nil {
			return err
		}
	}
	var tb [tetraSize]byte
	for i, cell := range m.Indices {
		c := m.Colors[i]
		putF32(tb[0:], c[0])
		putF32(tb[4:], c[1])
		putF32(tb[8:], c[2])
		putF32(tb[12:], c[3])
		tb[16] = 4
		for k, idx := range cell {
			binary.LittleEndian.PutUint32(tb[17+4*k:], idx)
		}
		if _, err := bw.Write(tb[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	putF32(b, f[0])
	putF32(b[4:], f[1])
	putF32(b[8:], f[2])
}

func putF32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}
