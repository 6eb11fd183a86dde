package tetsort

// insertionSortMax is the length at or below which Permutation
// uses insertion sort instead of radix passes.
const insertionSortMax = 64

// Permutation returns the indices 0..len(codes)-1 ordered by ascending code.
// Equal codes keep their input order so the result is reproducible.
//
// It performs an 8-bit LSD radix sort over (code, index) pairs. Each counting
// pass is stable which makes the whole sort stable. Passes over a byte that
// is equal across all codes are skipped.
func Permutation(codes []uint64) []int {
	n := len(codes)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if n <= 1 {
		return order
	}
	if n <= insertionSortMax {
		insertionSortByKey(codes, order)
		return order
	}
	keys := append([]uint64(nil), codes...)
	scratchKeys := make([]uint64, n)
	scratchOrder := make([]int, n)
	for shift := uint(0); shift < 64; shift += 8 {
		if radixPass(keys, order, scratchKeys, scratchOrder, shift) {
			keys, scratchKeys = scratchKeys, keys
			order, scratchOrder = scratchOrder, order
		}
	}
	return order
}

// radixPass counting-sorts src by the byte at shift into dst. It reports
// false and leaves dst untouched if every key has the same byte.
func radixPass(src []uint64, srcOrder []int, dst []uint64, dstOrder []int, shift uint) bool {
	var counts [256]int
	for _, k := range src {
		counts[(k>>shift)&0xff]++
	}
	if counts[(src[0]>>shift)&0xff] == len(src) {
		return false
	}
	// Prefix sums give each bucket's starting position.
	total := 0
	for i := range counts {
		c := counts[i]
		counts[i] = total
		total += c
	}
	for i, k := range src {
		b := (k >> shift) & 0xff
		dst[counts[b]] = k
		dstOrder[counts[b]] = srcOrder[i]
		counts[b]++
	}
	return true
}

// insertionSortByKey sorts order by keys[order[i]]. Stable.
func insertionSortByKey(keys []uint64, order []int) {
	for i := 1; i < len(order); i++ {
		o := order[i]
		k := keys[o]
		j := i - 1
		for j >= 0 && keys[order[j]] > k {
			order[j+1] = order[j]
			j--
		}
		order[j+1] = o
	}
}

// InversePermutation returns indexMap such that indexMap[order[k]] == k.
// order must be a permutation of 0..len(order)-1.
func InversePermutation(order []int) []uint32 {
	indexMap := make([]uint32, len(order))
	for k, old := range order {
		indexMap[old] = uint32(k)
	}
	return indexMap
}
