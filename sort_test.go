package tetsort

import (
	"math/rand"
	"sort"
	"testing"
)

func TestPermutationMatchesStableSort(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, n := range []int{0, 1, 2, 17, insertionSortMax, insertionSortMax + 1, 1000, 5000} {
		for _, spread := range []uint64{4, 1 << 20, 1<<64 - 1} {
			codes := make([]uint64, n)
			for i := range codes {
				codes[i] = rng.Uint64() % spread
				if spread == 1<<64-1 {
					codes[i] = rng.Uint64()
				}
			}
			want := make([]int, n)
			for i := range want {
				want[i] = i
			}
			sort.SliceStable(want, func(a, b int) bool { return codes[want[a]] < codes[want[b]] })
			got := Permutation(codes)
			if len(got) != n {
				t.Fatalf("n=%d: got length %d", n, len(got))
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("n=%d spread=%d: order differs at %d: got %d, want %d", n, spread, i, got[i], want[i])
				}
			}
		}
	}
}

func TestPermutationDoesNotModifyCodes(t *testing.T) {
	codes := make([]uint64, 300)
	for i := range codes {
		codes[i] = uint64(len(codes)-i) << 40
	}
	orig := append([]uint64(nil), codes...)
	order := Permutation(codes)
	for i := range codes {
		if codes[i] != orig[i] {
			t.Fatal("codes modified")
		}
	}
	if order[0] != len(codes)-1 || order[len(order)-1] != 0 {
		t.Errorf("reverse input not reversed: first %d last %d", order[0], order[len(order)-1])
	}
}

func TestInversePermutation(t *testing.T) {
	order := []int{2, 0, 3, 1}
	got := InversePermutation(order)
	want := []uint32{1, 3, 0, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	for k, old := range order {
		if got[old] != uint32(k) {
			t.Errorf("indexMap[order[%d]] = %d", k, got[old])
		}
	}
}
