package tetsort

// ReorderStats summarizes the effect of a reorder on cell locality.
type ReorderStats struct {
	// SpanBefore and SpanAfter are the mean index span (largest minus smallest
	// vertex index) of a tetrahedron before and after reordering.
	SpanBefore float64
	SpanAfter  float64
	// Moved is the number of vertices whose index changed.
	Moved int
}

// Reorder returns a copy of m with vertices sorted by ascending Morton code
// and every tetrahedron's indices rewritten to follow its vertices. Cell order
// and colors are unchanged. m is validated first and is not modified.
func Reorder(m Mesh) (Mesh, error) {
	out, _, err := ReorderWithStats(m)
	return out, err
}

// ReorderWithStats is Reorder that also reports locality statistics.
func ReorderWithStats(m Mesh) (Mesh, ReorderStats, error) {
	if err := m.Validate(); err != nil {
		return Mesh{}, ReorderStats{}, err
	}
	codes, err := MortonCodes(m.Vertices)
	if err != nil {
		return Mesh{}, ReorderStats{}, err
	}
	order := Permutation(codes)
	out := Apply(m, order)
	stats := ReorderStats{
		SpanBefore: MeanSpan(m.Indices),
		SpanAfter:  MeanSpan(out.Indices),
	}
	for k, old := range order {
		if k != old {
			stats.Moved++
		}
	}
	return out, stats, nil
}

// Apply permutes the vertices of m so that new vertex k is old vertex order[k]
// and remaps every cell index accordingly. order must be a permutation of
// 0..V-1 and m must be valid. The result shares no memory with m.
func Apply(m Mesh, order []int) Mesh {
	indexMap := InversePermutation(order)
	out := Mesh{
		Vertices: make([][3]float32, len(order)),
		Colors:   append([][4]float32(nil), m.Colors...),
		Indices:  make([][4]uint32, len(m.Indices)),
	}
	for k, old := range order {
		out.Vertices[k] = m.Vertices[old]
	}
	for c, cell := range m.Indices {
		out.Indices[c] = [4]uint32{
			indexMap[cell[0]],
			indexMap[cell[1]],
			indexMap[cell[2]],
			indexMap[cell[3]],
		}
	}
	return out
}

// MeanSpan returns the mean of max(cell)-min(cell) over all cells.
// Returns 0 for no cells.
func MeanSpan(indices [][4]uint32) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, cell := range indices {
		lo, hi := cell[0], cell[0]
		for _, idx := range cell[1:] {
			if idx < lo {
				lo = idx
			}
			if idx > hi {
				hi = idx
			}
		}
		sum += float64(hi - lo)
	}
	return sum / float64(len(indices))
}
