package tetsort

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMesh is returned when an operation needs at least one vertex.
	ErrEmptyMesh = errors.New("empty mesh")
	// ErrNonFinite is returned when a vertex coordinate is NaN or infinite.
	ErrNonFinite = errors.New("non-finite vertex coordinate")
	// ErrMalformed is returned for structurally invalid mesh data.
	ErrMalformed = errors.New("malformed mesh")
)

// IndexError reports a cell that references a vertex outside the vertex set.
// It unwraps to ErrMalformed.
type IndexError struct {
	Cell     int
	Slot     int
	Index    uint32
	Vertices int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("tetrahedron %d slot %d: vertex index %d out of range [0, %d)", e.Cell, e.Slot, e.Index, e.Vertices)
}

func (e *IndexError) Unwrap() error { return ErrMalformed }
