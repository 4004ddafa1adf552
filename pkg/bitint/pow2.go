/*
Package bitint provides the small integer helpers the analysis core needs
when sizing its buffers: power-of-two checks for transform sizes and lane
alignment for the wide-lane kernels.

Everything here is O(1), allocation free and safe to call from the tick
path.

Usage:

	// Suggest a transform size the planner accepts
	size := bitint.NextPowerOfTwo(1000) // 1024

	// Number of whole 8-wide blocks in a bin buffer
	blocks := bitint.AlignDown(len(bins), 8) / 8

----------------------------------------------------------------------

NextPowerOfTwo subtracts one before taking the bit length so that exact
powers of two are preserved:

	size = 8:  bits.Len(7)  = 3, 1 << 3 = 8
	size = 9:  bits.Len(8)  = 4, 1 << 4 = 16
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Non-positive
// sizes return 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
// A power of two has exactly one bit set, so n&(n-1) clears it to zero.
//
//	Input  Output  Binary
//	8      true    1000 & 0111 = 0000
//	7      false   0111 & 0110 = 0110
//	0      false   not positive
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// Log2 returns the base-2 logarithm of a power of two. The result for any
// other input is the index of its highest set bit.
func Log2(n int) int {
	if n <= 0 {
		return 0
	}
	return bits.Len(uint(n)) - 1
}

// AlignDown rounds n down to a multiple of align. align must be a power of two.
func AlignDown(n, align int) int {
	return n &^ (align - 1)
}
