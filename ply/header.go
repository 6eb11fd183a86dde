package ply

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soypat/tetsort"
)

type format int

const (
	formatASCII format = iota
	formatBinaryLE
	formatBinaryBE
)

var formats = map[string]format{
	"ascii":                formatASCII,
	"binary_little_endian": formatBinaryLE,
	"binary_big_endian":    formatBinaryBE,
}

// scalarType is a PLY numeric property type.
type scalarType int

const (
	typeInt8 scalarType = iota
	typeUint8
	typeInt16
	typeUint16
	typeInt32
	typeUint32
	typeFloat32
	typeFloat64
)

// Both the classic PLY type names and the sized aliases are accepted.
var scalarTypes = map[string]scalarType{
	"char":    typeInt8,
	"int8":    typeInt8,
	"uchar":   typeUint8,
	"uint8":   typeUint8,
	"short":   typeInt16,
	"int16":   typeInt16,
	"ushort":  typeUint16,
	"uint16":  typeUint16,
	"int":     typeInt32,
	"int32":   typeInt32,
	"uint":    typeUint32,
	"uint32":  typeUint32,
	"float":   typeFloat32,
	"float32": typeFloat32,
	"double":  typeFloat64,
	"float64": typeFloat64,
}

func (t scalarType) size() int {
	switch t {
	case typeInt8, typeUint8:
		return 1
	case typeInt16, typeUint16:
		return 2
	case typeInt32, typeUint32, typeFloat32:
		return 4
	}
	return 8
}

func (t scalarType) isInteger() bool { return t < typeFloat32 }

type property struct {
	name string
	typ  scalarType
	// list properties are prefixed by a count of type countType.
	list      bool
	countType scalarType
}

type element struct {
	name  string
	count int
	props []property
}

// propIndex returns the position of the named property in e, or -1.
func (e *element) propIndex(name string) int {
	for i := range e.props {
		if e.props[i].name == name {
			return i
		}
	}
	return -1
}

type header struct {
	format   format
	elements []element
}

func (h *header) element(name string) *element {
	for i := range h.elements {
		if h.elements[i].name == name {
			return &h.elements[i]
		}
	}
	return nil
}

func malformed(msg string, a ...any) error {
	return fmt.Errorf("%w: ply: "+msg, append([]any{tetsort.ErrMalformed}, a...)...)
}

// maxHeaderLines bounds how much of a non-PLY input is scanned.
const maxHeaderLines = 1 << 12

// readHeader consumes the header from r, leaving r at the first body byte.
func readHeader(r *bufio.Reader) (header, error) {
	var h header
	line, err := readLine(r)
	if err != nil {
		return h, err
	}
	if line != "ply" {
		return h, malformed("missing magic number")
	}
	gotFormat := false
	for n := 1; ; n++ {
		if n > maxHeaderLines {
			return h, malformed("header too long")
		}
		line, err = readLine(r)
		if err != nil {
			return h, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment", "obj_info":
		case "format":
			if len(fields) != 3 {
				return h, malformed("bad format line %q", line)
			}
			f, ok := formats[fields[1]]
			if !ok {
				return h, malformed("unknown format %q", fields[1])
			}
			if fields[2] != "1.0" {
				return h, malformed("unsupported version %q", fields[2])
			}
			h.format = f
			gotFormat = true
		case "element":
			if len(fields) != 3 {
				return h, malformed("bad element line %q", line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return h, malformed("bad element count %q", fields[2])
			}
			h.elements = append(h.elements, element{name: fields[1], count: count})
		case "property":
			if len(h.elements) == 0 {
				return h, malformed("property %q before any element", line)
			}
			p, err := parseProperty(fields)
			if err != nil {
				return h, err
			}
			e := &h.elements[len(h.elements)-1]
			e.props = append(e.props, p)
		case "end_header":
			if !gotFormat {
				return h, malformed("missing format line")
			}
			return h, nil
		default:
			return h, malformed("unexpected header line %q", line)
		}
	}
}

func parseProperty(fields []string) (property, error) {
	if len(fields) == 3 {
		t, ok := scalarTypes[fields[1]]
		if !ok {
			return property{}, malformed("unknown property type %q", fields[1])
		}
		return property{name: fields[2], typ: t}, nil
	}
	if len(fields) == 5 && fields[1] == "list" {
		ct, ok := scalarTypes[fields[2]]
		if !ok || !ct.isInteger() {
			return property{}, malformed("bad list count type %q", fields[2])
		}
		vt, ok := scalarTypes[fields[3]]
		if !ok {
			return property{}, malformed("unknown list value type %q", fields[3])
		}
		return property{name: fields[4], typ: vt, list: true, countType: ct}, nil
	}
	return property{}, malformed("bad property line %q", strings.Join(fields, " "))
}

// readLine reads a header line without its line terminator.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return "", malformed("unexpected end of header")
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
