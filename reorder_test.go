package tetsort_test

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/soypat/tetsort"
	"github.com/soypat/tetsort/gen"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestReorderTwoTets(t *testing.T) {
	in := gen.Tets(2)
	orig := in.Clone()
	out, err := tetsort.Reorder(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Vertices) != 8 || len(out.Indices) != 2 || len(out.Colors) != 2 {
		t.Fatalf("bad output sizes: %d vertices, %d cells, %d colors", len(out.Vertices), len(out.Indices), len(out.Colors))
	}
	for c, cell := range out.Indices {
		seen := map[uint32]bool{}
		for k, idx := range cell {
			if idx >= 8 {
				t.Fatalf("cell %d index %d out of range", c, idx)
			}
			if seen[idx] {
				t.Errorf("cell %d repeats index %d", c, idx)
			}
			seen[idx] = true
			if out.Vertices[idx] != orig.Vertices[orig.Indices[c][k]] {
				t.Errorf("cell %d slot %d moved: got %v want %v", c, k, out.Vertices[idx], orig.Vertices[orig.Indices[c][k]])
			}
		}
	}
	testMeshEqual(t, orig, in) // input untouched.
}

func TestReorderProperties(t *testing.T) {
	bcc, err := gen.BCC(r3.Box{Min: r3.Vec{X: -2, Y: -1, Z: -3}, Max: r3.Vec{X: 2, Y: 3, Z: 1}}, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	meshes := map[string]tetsort.Mesh{
		"tets":   gen.Tets(7),
		"sphere": gen.Sphere(16, 8, 1),
		"bcc":    bcc,
		"random": randomMesh(rand.New(rand.NewSource(4)), 500, 900),
	}
	for name, in := range meshes {
		t.Run(name, func(t *testing.T) {
			out, stats, err := tetsort.ReorderWithStats(in)
			if err != nil {
				t.Fatal(err)
			}
			if err := out.Validate(); err != nil {
				t.Fatal(err)
			}
			// Permutation validity.
			if !sameMultiset(in.Vertices, out.Vertices) {
				t.Error("output vertices are not a permutation of input vertices")
			}
			// Index consistency, colors and cell order untouched.
			for c := range in.Indices {
				if in.Colors[c] != out.Colors[c] {
					t.Fatalf("cell %d color changed", c)
				}
				for k := range in.Indices[c] {
					if in.Vertices[in.Indices[c][k]] != out.Vertices[out.Indices[c][k]] {
						t.Fatalf("cell %d slot %d references a different vertex", c, k)
					}
				}
			}
			// Output is sorted by code.
			codes, err := tetsort.MortonCodes(out.Vertices)
			if err != nil {
				t.Fatal(err)
			}
			if !sort.SliceIsSorted(codes, func(i, j int) bool { return codes[i] < codes[j] }) {
				t.Error("output vertices not in Morton order")
			}
			// Idempotence.
			again, err := tetsort.Reorder(out)
			if err != nil {
				t.Fatal(err)
			}
			testMeshEqual(t, out, again)
			// Content digest survives.
			din, err := tetsort.Fingerprint(in)
			if err != nil {
				t.Fatal(err)
			}
			dout, err := tetsort.Fingerprint(out)
			if err != nil {
				t.Fatal(err)
			}
			if din != dout {
				t.Errorf("fingerprint changed: %+v -> %+v", din, dout)
			}
			if stats.SpanBefore < 0 || stats.SpanAfter < 0 || stats.Moved > len(in.Vertices) {
				t.Errorf("bad stats %+v", stats)
			}
		})
	}
}

func TestReorderImprovesLocality(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	m := gen.Sphere(32, 16, 1)
	// Scramble vertex order to destroy the generator's locality.
	perm := rng.Perm(len(m.Vertices))
	scrambled := tetsort.Apply(m, perm)
	out, stats, err := tetsort.ReorderWithStats(scrambled)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SpanAfter >= stats.SpanBefore {
		t.Errorf("mean index span did not improve: before %.1f after %.1f", stats.SpanBefore, stats.SpanAfter)
	}
	if got := tetsort.MeanSpan(out.Indices); got != stats.SpanAfter {
		t.Errorf("SpanAfter %v does not match MeanSpan %v", stats.SpanAfter, got)
	}
}

func TestReorderTiesAreStable(t *testing.T) {
	// Duplicate positions produce equal codes and must keep input order.
	m := tetsort.Mesh{
		Vertices: [][3]float32{{1, 1, 1}, {0, 0, 0}, {1, 1, 1}, {0, 0, 0}},
		Colors:   [][4]float32{{1, 2, 3, 4}},
		Indices:  [][4]uint32{{0, 1, 2, 3}},
	}
	out, err := tetsort.Reorder(m)
	if err != nil {
		t.Fatal(err)
	}
	want := [4]uint32{2, 0, 3, 1}
	if out.Indices[0] != want {
		t.Errorf("got indices %v, want %v", out.Indices[0], want)
	}
}

func TestReorderErrors(t *testing.T) {
	if _, err := tetsort.Reorder(tetsort.Mesh{}); !errors.Is(err, tetsort.ErrEmptyMesh) {
		t.Errorf("empty mesh: got %v", err)
	}
	m := gen.Tets(1)
	m.Indices[0][1] = 99
	_, err := tetsort.Reorder(m)
	var ie *tetsort.IndexError
	if !errors.As(err, &ie) || ie.Index != 99 || ie.Slot != 1 {
		t.Errorf("bad index: got %v", err)
	}
	if !errors.Is(err, tetsort.ErrMalformed) {
		t.Error("IndexError should unwrap to ErrMalformed")
	}
	m = gen.Tets(2)
	m.Colors = m.Colors[:1]
	if _, err := tetsort.Reorder(m); !errors.Is(err, tetsort.ErrMalformed) {
		t.Errorf("length mismatch: got %v", err)
	}
}

func randomMesh(rng *rand.Rand, nv, nt int) tetsort.Mesh {
	m := tetsort.Mesh{
		Vertices: make([][3]float32, nv),
		Colors:   make([][4]float32, nt),
		Indices:  make([][4]uint32, nt),
	}
	for i := range m.Vertices {
		m.Vertices[i] = [3]float32{rng.Float32()*10 - 5, rng.Float32() - 0.5, rng.Float32() * 100}
	}
	for i := range m.Indices {
		m.Colors[i] = [4]float32{rng.Float32(), rng.Float32(), rng.Float32(), 40}
		for k := range m.Indices[i] {
			m.Indices[i][k] = uint32(rng.Intn(nv))
		}
	}
	return m
}

func sameMultiset(a, b [][3]float32) bool {
	if len(a) != len(b) {
		return false
	}
	count := make(map[[3]float32]int, len(a))
	for _, v := range a {
		count[v]++
	}
	for _, v := range b {
		count[v]--
		if count[v] < 0 {
			return false
		}
	}
	return true
}

func testMeshEqual(t testing.TB, want, got tetsort.Mesh) {
	t.Helper()
	if len(want.Vertices) != len(got.Vertices) || len(want.Indices) != len(got.Indices) || len(want.Colors) != len(got.Colors) {
		t.Fatal("mesh sizes differ")
	}
	for i := range want.Vertices {
		if want.Vertices[i] != got.Vertices[i] {
			t.Fatalf("vertex %d differs: %v != %v", i, want.Vertices[i], got.Vertices[i])
		}
	}
	for i := range want.Indices {
		if want.Indices[i] != got.Indices[i] || want.Colors[i] != got.Colors[i] {
			t.Fatalf("cell %d differs", i)
		}
	}
}
