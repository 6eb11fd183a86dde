package tetsort

import (
	"fmt"

	"github.com/chewxy/math32"
)

const (
	// mortonScale is the fixed-point scale applied to normalized coordinates.
	// Positions closer than extent/mortonScale on every axis may share a code.
	mortonScale = 1024
	// Quantized coordinates are clamped to the signed 21-bit range.
	quantMin = -(1 << 20)
	quantMax = 1<<20 - 1
	// signBits holds the relocated axis sign bits after interleaving (bits 60-62).
	signBits = 0x7000000000000000
)

// MortonCodes returns the 64-bit Z-order code of every vertex. Codes depend on
// the bounding box of the whole set so they are only comparable within a
// single call. Vertices close in space tend to get numerically close codes.
//
// An axis on which all vertices share the same coordinate quantizes to 0 for
// every vertex instead of dividing by a zero extent.
func MortonCodes(vertices [][3]float32) ([]uint64, error) {
	center, extent, err := normalization(vertices)
	if err != nil {
		return nil, err
	}
	codes := make([]uint64, len(vertices))
	for i, v := range vertices {
		codes[i] = MortonCode(Quantize(v, center, extent))
	}
	return codes, nil
}

// normalization computes the bounding box center and half-size per axis.
func normalization(vertices [][3]float32) (center, extent [3]float32, err error) {
	if len(vertices) == 0 {
		return center, extent, ErrEmptyMesh
	}
	lo, hi := vertices[0], vertices[0]
	for i, v := range vertices {
		for k := range v {
			if math32.IsNaN(v[k]) || math32.IsInf(v[k], 0) {
				return center, extent, fmt.Errorf("vertex %d: %w", i, ErrNonFinite)
			}
			lo[k] = math32.Min(lo[k], v[k])
			hi[k] = math32.Max(hi[k], v[k])
		}
	}
	for k := range center {
		center[k] = (lo[k] + hi[k]) / 2
		extent[k] = (hi[k] - lo[k]) / 2
	}
	return center, extent, nil
}

// Quantize maps v into the fixed-point lattice used for Morton encoding.
// Each axis is normalized to nominally [-1, 1] with center and extent, scaled
// by 1024, clamped to [-2^20, 2^20-1] and truncated toward zero.
// A zero extent yields 0 on that axis.
func Quantize(v, center, extent [3]float32) (q [3]int32) {
	for k := range v {
		var n float32
		if extent[k] != 0 {
			n = (v[k] - center[k]) / extent[k]
		}
		q[k] = int32(clamp(n*mortonScale, quantMin, quantMax))
	}
	return q
}

func clamp(x, lo, hi float32) float32 {
	return math32.Min(hi, math32.Max(x, lo))
}

// MortonCode interleaves an already quantized point into a 64-bit code.
// Codes compare as unsigned integers in the same order as the signed Z-order
// walk: points with negative coordinates come before positive ones.
func MortonCode(q [3]int32) uint64 {
	code := SplitBy3(signToBit20(q[0])) |
		SplitBy3(signToBit20(q[1]))<<1 |
		SplitBy3(signToBit20(q[2]))<<2
	return code ^ signBits
}

// DecodeMorton is the inverse of MortonCode.
func DecodeMorton(code uint64) (q [3]int32) {
	code ^= signBits
	for k := range q {
		q[k] = bit20ToSign(CompactBy3(code >> uint(k)))
	}
	return q
}

// signToBit20 moves the sign bit of raw from bit 31 to bit 20 keeping the
// low 20 bits of the two's complement value.
func signToBit20(raw int32) uint32 {
	u := uint32(raw)
	return (u&0x80000000)>>11 | u&0x0fffff
}

func bit20ToSign(x uint32) int32 {
	if x&0x100000 != 0 {
		return int32(x | 0xfff00000)
	}
	return int32(x)
}

// SplitBy3 spreads the low 21 bits of x so that there are two zero bits
// between every bit of x.
func SplitBy3(x uint32) uint64 {
	r := uint64(x) & 0x1fffff
	r = (r | r<<32) & 0x1f00000000ffff
	r = (r | r<<16) & 0x1f0000ff0000ff
	r = (r | r<<8) & 0x100f00f00f00f00f
	r = (r | r<<4) & 0x10c30c30c30c30c3
	r = (r | r<<2) & 0x1249249249249249
	return r
}

// CompactBy3 gathers every third bit of x starting at bit 0. It reverses SplitBy3.
func CompactBy3(x uint64) uint32 {
	x &= 0x1249249249249249
	x = (x ^ (x >> 2)) & 0x10c30c30c30c30c3
	x = (x ^ (x >> 4)) & 0x100f00f00f00f00f
	x = (x ^ (x >> 8)) & 0x1f0000ff0000ff
	x = (x ^ (x >> 16)) & 0x1f00000000ffff
	x = (x ^ (x >> 32)) & 0x1fffff
	return uint32(x)
}
