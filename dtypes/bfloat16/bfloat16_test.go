package bfloat16

import (
	"math"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	// Values exactly representable in bfloat16 survive the round trip.
	for _, value := range []float32{0, 1, -1, 0.5, 2, -3.5, 256} {
		if got := FromFloat32(value).Float32(); got != value {
			t.Errorf("expected FromFloat32(%v).Float32() to round-trip, got %v", value, got)
		}
	}
}

func TestTruncation(t *testing.T) {
	// 1.001 is not representable: only the top 7 mantissa bits survive.
	got := FromFloat32(1.001).Float32()
	if got == 1.001 {
		t.Fatal("expected 1.001 to lose precision in bfloat16")
	}
	if math.Abs(float64(got-1.001)) > 1.0/128 {
		t.Fatalf("expected truncation within 2**-7, got %v", got)
	}
}

func TestSpecialValues(t *testing.T) {
	if !math.IsInf(float64(Inf(1).Float32()), 1) {
		t.Fatal("expected Inf(1) to convert to +Inf")
	}
	if !math.IsInf(float64(Inf(-1).Float32()), -1) {
		t.Fatal("expected Inf(-1) to convert to -Inf")
	}
	if !FromFloat32(float32(math.NaN())).IsNaN() {
		t.Fatal("expected NaN to be preserved")
	}
	if MaxValue.Float32() <= 3e38 || math.IsInf(float64(MaxValue.Float32()), 1) {
		t.Fatalf("expected MaxValue to be a large finite value, got %v", MaxValue.Float32())
	}
	if SmallestNonZero().Float32() <= 0 {
		t.Fatalf("expected SmallestNonZero to be positive, got %v", SmallestNonZero().Float32())
	}
}

func TestBits(t *testing.T) {
	if FromBits(0x3f80).Float32() != 1 {
		t.Fatalf("expected bits 0x3f80 to be 1.0, got %v", FromBits(0x3f80).Float32())
	}
	if FromFloat64(1).Bits() != 0x3f80 {
		t.Fatalf("expected 1.0 to have bits 0x3f80, got %#x", FromFloat64(1).Bits())
	}
}
