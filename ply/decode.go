package ply

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"strconv"

	"github.com/soypat/tetsort"
)

// valueReader reads single PLY scalars from an element body.
type valueReader interface {
	read(t scalarType) (float64, error)
}

type binaryReader struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (br *binaryReader) read(t scalarType) (float64, error) {
	b := br.buf[:t.size()]
	if _, err := io.ReadFull(br.r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	switch t {
	case typeInt8:
		return float64(int8(b[0])), nil
	case typeUint8:
		return float64(b[0]), nil
	case typeInt16:
		return float64(int16(br.order.Uint16(b))), nil
	case typeUint16:
		return float64(br.order.Uint16(b)), nil
	case typeInt32:
		return float64(int32(br.order.Uint32(b))), nil
	case typeUint32:
		return float64(br.order.Uint32(b)), nil
	case typeFloat32:
		return float64(math.Float32frombits(br.order.Uint32(b))), nil
	}
	return math.Float64frombits(br.order.Uint64(b)), nil
}

type asciiReader struct {
	s *bufio.Scanner
}

func newASCIIReader(r io.Reader) *asciiReader {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &asciiReader{s: s}
}

func (ar *asciiReader) read(t scalarType) (float64, error) {
	if !ar.s.Scan() {
		if err := ar.s.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	tok := ar.s.Text()
	if t.isInteger() {
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return 0, malformed("bad integer %q", tok)
		}
		return float64(n), nil
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, malformed("bad float %q", tok)
	}
	if t == typeFloat32 {
		f = float64(float32(f))
	}
	return f, nil
}

// Decode reads a tetrahedral mesh from PLY data. The vertex element must
// have x, y and z properties and the tetrahedron element r, g, b, s and a
// vertex_indices list of exactly 4 entries per cell. Other elements and
// properties are skipped. The decoded mesh is validated.
func Decode(r io.Reader) (tetsort.Mesh, error) {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return tetsort.Mesh{}, err
	}
	layout, err := newMeshLayout(&h)
	if err != nil {
		return tetsort.Mesh{}, err
	}
	var vr valueReader
	switch h.format {
	case formatASCII:
		vr = newASCIIReader(br)
	case formatBinaryLE:
		vr = &binaryReader{r: br, order: binary.LittleEndian}
	case formatBinaryBE:
		vr = &binaryReader{r: br, order: binary.BigEndian}
	}
	var m tetsort.Mesh
	for i := range h.elements {
		e := &h.elements[i]
		switch e {
		case layout.vertex:
			m.Vertices, err = layout.readVertices(vr)
		case layout.tetra:
			m.Colors, m.Indices, err = layout.readTetrahedra(vr)
		default:
			err = skipElement(vr, e)
		}
		if err != nil {
			return tetsort.Mesh{}, err
		}
	}
	if err := m.Validate(); err != nil {
		return tetsort.Mesh{}, err
	}
	return m, nil
}

// meshLayout locates the properties Decode needs within the header.
type meshLayout struct {
	vertex *element
	xyz    [3]int
	tetra  *element
	rgbs   [4]int
	inds   int
}

func newMeshLayout(h *header) (*meshLayout, error) {
	l := &meshLayout{
		vertex: h.element("vertex"),
		tetra:  h.element("tetrahedron"),
	}
	if l.vertex == nil {
		return nil, malformed("missing vertex element")
	}
	if l.tetra == nil {
		return nil, malformed("missing tetrahedron element")
	}
	for k, name := range [3]string{"x", "y", "z"} {
		l.xyz[k] = l.vertex.propIndex(name)
		if l.xyz[k] < 0 || l.vertex.props[l.xyz[k]].list {
			return nil, malformed("vertex element needs scalar property %q", name)
		}
	}
	for k, name := range [4]string{"r", "g", "b", "s"} {
		l.rgbs[k] = l.tetra.propIndex(name)
		if l.rgbs[k] < 0 || l.tetra.props[l.rgbs[k]].list {
			return nil, malformed("tetrahedron element needs scalar property %q", name)
		}
	}
	l.inds = l.tetra.propIndex("vertex_indices")
	if l.inds < 0 || !l.tetra.props[l.inds].list {
		return nil, malformed("tetrahedron element needs list property \"vertex_indices\"")
	}
	return l, nil
}

// preallocMax caps allocations sized from header counts which are untrusted.
const preallocMax = 1 << 20

func (l *meshLayout) readVertices(vr valueReader) ([][3]float32, error) {
	e := l.vertex
	vertices := make([][3]float32, 0, min(e.count, preallocMax))
	row := make([]float64, len(e.props))
	for i := 0; i < e.count; i++ {
		if _, err := readRow(vr, e, row, -1, nil); err != nil {
			return nil, rowError(e, i, err)
		}
		vertices = append(vertices, [3]float32{
			float32(row[l.xyz[0]]),
			float32(row[l.xyz[1]]),
			float32(row[l.xyz[2]]),
		})
	}
	return vertices, nil
}

func (l *meshLayout) readTetrahedra(vr valueReader) ([][4]float32, [][4]uint32, error) {
	e := l.tetra
	n := min(e.count, preallocMax)
	colors := make([][4]float32, 0, n)
	indices := make([][4]uint32, 0, n)
	row := make([]float64, len(e.props))
	var list [4]float64
	for i := 0; i < e.count; i++ {
		nlist, err := readRow(vr, e, row, l.inds, list[:])
		if err != nil {
			return nil, nil, rowError(e, i, err)
		}
		if nlist != len(list) {
			return nil, nil, &ListLengthError{Element: e.name, Property: "vertex_indices", Row: i, Len: nlist, Want: len(list)}
		}
		var cell [4]uint32
		for k, v := range list {
			if v < 0 || v > math.MaxUint32 || v != math.Trunc(v) {
				return nil, nil, malformed("tetrahedron %d: invalid vertex index %v", i, v)
			}
			cell[k] = uint32(v)
		}
		colors = append(colors, [4]float32{
			float32(row[l.rgbs[0]]),
			float32(row[l.rgbs[1]]),
			float32(row[l.rgbs[2]]),
			float32(row[l.rgbs[3]]),
		})
		indices = append(indices, cell)
	}
	return colors, indices, nil
}

// readRow reads one element row storing scalar properties in row. The values
// of list property listProp are stored in list and their count returned; if
// the count differs from len(list) the rest of the row is left unread.
// Values of other list properties are discarded.
func readRow(vr valueReader, e *element, row []float64, listProp int, list []float64) (int, error) {
	nlist := 0
	for p := range e.props {
		prop := &e.props[p]
		if !prop.list {
			v, err := vr.read(prop.typ)
			if err != nil {
				return nlist, err
			}
			row[p] = v
			continue
		}
		cnt, err := vr.read(prop.countType)
		if err != nil {
			return nlist, err
		}
		if cnt < 0 {
			return nlist, malformed("negative list length for %q", prop.name)
		}
		store := p == listProp
		if store {
			nlist = int(cnt)
			if nlist != len(list) {
				return nlist, nil
			}
		}
		for j := 0; j < int(cnt); j++ {
			v, err := vr.read(prop.typ)
			if err != nil {
				return nlist, err
			}
			if store {
				list[j] = v
			}
		}
	}
	return nlist, nil
}

func skipElement(vr valueReader, e *element) error {
	row := make([]float64, len(e.props))
	for i := 0; i < e.count; i++ {
		if _, err := readRow(vr, e, row, -1, nil); err != nil {
			return rowError(e, i, err)
		}
	}
	return nil
}

func rowError(e *element, row int, err error) error {
	if errors.Is(err, tetsort.ErrMalformed) {
		return err
	}
	return malformed("%s %d: %w", e.name, row, err)
}
