// Package bfloat16 is a trivial implementation of the bfloat16 type.
//
// BFloat16 ("brain floating point") is a 16-bit truncation of the IEEE 754
// single-precision format: same 8-bit exponent, but only 7 mantissa bits. It
// trades precision for the float32 dynamic range, which is what most
// accelerator matrix units want.
//
// Conversions to/from float32 are exact truncations/extensions of the bit
// pattern (round-towards-zero), which is how the hardware treats them.
package bfloat16

import (
	"math"
	"strconv"
)

// BFloat16 holds the raw 16-bit representation.
type BFloat16 uint16

// Float32 extends the BFloat16 to a float32. The conversion is exact.
func (f BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(f) << 16)
}

// FromFloat32 truncates a float32 to a BFloat16.
func FromFloat32(x float32) BFloat16 {
	return BFloat16(math.Float32bits(x) >> 16)
}

// FromFloat64 truncates a float64 to a BFloat16.
func FromFloat64(x float64) BFloat16 {
	return FromFloat32(float32(x))
}

// FromBits converts a raw uint16 to a BFloat16.
func FromBits(bits uint16) BFloat16 {
	return BFloat16(bits)
}

// Bits returns the raw 16-bit representation.
func (f BFloat16) Bits() uint16 {
	return uint16(f)
}

// IsNaN reports whether f is a "not-a-number" value.
func (f BFloat16) IsNaN() bool {
	f32 := f.Float32()
	return f32 != f32
}

// String implements fmt.Stringer, printing the float value.
func (f BFloat16) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'f', -1, 32)
}

// Inf returns the BFloat16 infinity with the given sign; sign >= 0 returns
// positive infinity.
func Inf(sign int) BFloat16 {
	return FromFloat32(float32(math.Inf(sign)))
}

// MaxValue is the largest finite bfloat16 value (circa 3.39e38).
const MaxValue = BFloat16(0x7f7f)

// SmallestNonZero returns the smallest positive denormal bfloat16 value,
// 1 / 2**(127 - 1 + 7), circa 9.18e-41.
func SmallestNonZero() BFloat16 {
	return BFloat16(0x0001)
}
