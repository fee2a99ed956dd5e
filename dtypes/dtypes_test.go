package dtypes

import (
	"math"
	"testing"

	"github.com/x448/float16"

	"github.com/gomusa/gomusa/dtypes/bfloat16"
)

func TestSize(t *testing.T) {
	want := map[DType]int{
		Uint8:    1,
		Float16:  2,
		BFloat16: 2,
		Int32:    4,
		Float32:  4,
		Int64:    8,
		Float64:  8,
	}
	for dtype, size := range want {
		if got := dtype.Size(); got != size {
			t.Errorf("expected %s.Size() to be %d, got %d", dtype, size, got)
		}
	}
	if got := Float32.Memory(10); got != 40 {
		t.Errorf("expected Float32.Memory(10) to be 40, got %d", got)
	}
}

func TestMapOfNames(t *testing.T) {
	if MapOfNames["Float16"] != Float16 {
		t.Fatalf("expected MapOfNames[\"Float16\"] to be Float16, got %v", MapOfNames["Float16"])
	}
	if MapOfNames["float16"] != Float16 {
		t.Fatalf("expected MapOfNames[\"float16\"] to be Float16, got %v", MapOfNames["float16"])
	}
	if MapOfNames["Half"] != Float16 {
		t.Fatalf("expected MapOfNames[\"Half\"] to be Float16, got %v", MapOfNames["Half"])
	}
	if MapOfNames["bf16"] != BFloat16 {
		t.Fatalf("expected MapOfNames[\"bf16\"] to be BFloat16, got %v", MapOfNames["bf16"])
	}
	if FromString("Byte") != Uint8 {
		t.Fatalf("expected FromString(\"Byte\") to be Uint8, got %v", FromString("Byte"))
	}
	if FromString("no-such-dtype") != InvalidDType {
		t.Fatalf("expected FromString of an unknown name to be InvalidDType, got %v", FromString("no-such-dtype"))
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, dtype := range All {
		if got := FromString(dtype.String()); got != dtype {
			t.Errorf("expected FromString(%q) to round-trip, got %v", dtype.String(), got)
		}
	}
	if InvalidDType.String() != "InvalidDType" {
		t.Errorf("expected InvalidDType.String() to be \"InvalidDType\", got %q", InvalidDType.String())
	}
}

func TestFromGoType(t *testing.T) {
	if FromAny(int64(7)) != Int64 {
		t.Fatalf("expected FromAny(int64) to be Int64")
	}
	if FromAny(float32(1.5)) != Float32 {
		t.Fatalf("expected FromAny(float32) to be Float32")
	}
	if FromAny(float16.Fromfloat32(1)) != Float16 {
		t.Fatalf("expected FromAny(float16.Float16) to be Float16")
	}
	if FromAny(bfloat16.FromFloat32(1)) != BFloat16 {
		t.Fatalf("expected FromAny(bfloat16.BFloat16) to be BFloat16")
	}
	if FromAny("a string") != InvalidDType {
		t.Fatalf("expected FromAny(string) to be InvalidDType")
	}
	for _, dtype := range All {
		if FromGoType(dtype.GoType()) != dtype {
			t.Errorf("expected FromGoType(%s.GoType()) to round-trip", dtype)
		}
	}
}

func TestHighestLowestSmallestValues(t *testing.T) {
	if !math.IsInf(Float64.HighestValue().(float64), 1) {
		t.Fatal("expected Float64.HighestValue() to be +Inf")
	}
	if !math.IsInf(float64(Float32.LowestValue().(float32)), -1) {
		t.Fatal("expected Float32.LowestValue() to be -Inf")
	}
	f16, ok := Float16.HighestValue().(float16.Float16)
	if !ok || f16 != float16.Inf(1) {
		t.Fatalf("expected Float16.HighestValue() to be float16 +Inf, got %v", Float16.HighestValue())
	}
	bf16, ok := BFloat16.HighestValue().(bfloat16.BFloat16)
	if !ok || bf16 != bfloat16.Inf(1) {
		t.Fatalf("expected BFloat16.HighestValue() to be bfloat16 +Inf, got %v", BFloat16.HighestValue())
	}
	if Uint8.LowestValue().(uint8) != 0 {
		t.Fatal("expected Uint8.LowestValue() to be 0")
	}
	if Int64.SmallestNonZeroValueForDType().(int64) != 1 {
		t.Fatal("expected Int64.SmallestNonZeroValueForDType() to be 1")
	}
	if _, ok := BFloat16.SmallestNonZeroValueForDType().(bfloat16.BFloat16); !ok {
		t.Fatal("expected BFloat16.SmallestNonZeroValueForDType() to be bfloat16.BFloat16")
	}
}

func TestPredicates(t *testing.T) {
	if !Float16.IsFloat() || !BFloat16.IsFloat() || Int32.IsFloat() {
		t.Fatal("IsFloat misclassified a dtype")
	}
	if !Uint8.IsInt() || !Int64.IsInt() || Float64.IsInt() {
		t.Fatal("IsInt misclassified a dtype")
	}
	if InvalidDType.IsValid() {
		t.Fatal("expected InvalidDType not to be valid")
	}
	for _, dtype := range All {
		if !dtype.IsValid() {
			t.Errorf("expected %s to be valid", dtype)
		}
	}
}
