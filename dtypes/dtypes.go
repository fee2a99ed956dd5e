// Package dtypes enumerates the data types accelerator buffers can hold.
//
// It covers the numeric kinds every backend is expected to provide typed buffers
// for (byte, half, float, double, bfloat16, int32 and int64), along with
// converters to/from Go native types and min/max constants per type.
package dtypes

import (
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/gomusa/gomusa/dtypes/bfloat16"
)

// panicf panics with the formatted description.
//
// It is only used for "bugs in the code" -- when parameters don't follow the specifications.
func panicf(format string, args ...any) {
	panic(errors.Errorf(format, args...))
}

// DType is an enum of the data types supported by accelerator buffers.
type DType int32

const (
	// InvalidDType serves as the default, and is not a valid value.
	InvalidDType DType = iota

	// Uint8 are 8-bit unsigned integer values ("byte" buffers).
	Uint8

	// Int32 are 32-bit signed integer values.
	Int32

	// Int64 are 64-bit signed integer values.
	Int64

	// Float16 is the IEEE 754 half-precision (binary16) floating-point format.
	Float16

	// Float32 is the IEEE 754 single-precision (binary32) floating-point format.
	Float32

	// Float64 is the IEEE 754 double-precision (binary64) floating-point format.
	Float64

	// BFloat16 is the truncated "brain floating point" 16-bit format: 1 sign bit,
	// 8 exponent bits and 7 mantissa bits.
	BFloat16
)

// Aliases matching the usual accelerator naming of the buffer constructors.
const (
	Byte   = Uint8
	Half   = Float16
	Float  = Float32
	Double = Float64
	Int    = Int32
	Long   = Int64
)

// All enumerates the valid DType values.
var All = []DType{Uint8, Int32, Int64, Float16, Float32, Float64, BFloat16}

// String implements fmt.Stringer.
func (dtype DType) String() string {
	switch dtype {
	case Uint8:
		return "Uint8"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case Float16:
		return "Float16"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case BFloat16:
		return "BFloat16"
	}
	return "InvalidDType"
}

// MapOfNames maps the canonical names (and some aliases) to their DType.
// Lower-case versions of the names are added by the package init.
var MapOfNames = map[string]DType{
	"Uint8":    Uint8,
	"Byte":     Uint8,
	"U8":       Uint8,
	"Int32":    Int32,
	"Int":      Int32,
	"I32":      Int32,
	"Int64":    Int64,
	"Long":     Int64,
	"I64":      Int64,
	"Float16":  Float16,
	"Half":     Float16,
	"F16":      Float16,
	"Float32":  Float32,
	"Float":    Float32,
	"F32":      Float32,
	"Float64":  Float64,
	"Double":   Float64,
	"F64":      Float64,
	"BFloat16": BFloat16,
	"BF16":     BFloat16,
}

func init() {
	// Add a mapping for the lower-case version of the names.
	keys := slices.Collect(maps.Keys(MapOfNames))
	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if lowerKey == key {
			continue
		}
		if _, found := MapOfNames[lowerKey]; found {
			continue
		}
		MapOfNames[lowerKey] = MapOfNames[key]
	}
}

// FromString returns the DType for the given name, or InvalidDType if the name
// is not known. Canonical names, aliases and their lower-case versions are accepted.
func FromString(name string) DType {
	dtype, found := MapOfNames[name]
	if !found {
		return InvalidDType
	}
	return dtype
}

// IsValid reports whether this is one of the enumerated data types.
func (dtype DType) IsValid() bool {
	return slices.Index(All, dtype) != -1
}

// IsFloat reports whether the DType is a floating point kind, including the
// 16-bit formats.
func (dtype DType) IsFloat() bool {
	return dtype == Float16 || dtype == Float32 || dtype == Float64 || dtype == BFloat16
}

// IsInt reports whether the DType is an integer kind.
func (dtype DType) IsInt() bool {
	return dtype == Uint8 || dtype == Int32 || dtype == Int64
}

// Size returns the number of bytes one value of this DType occupies.
func (dtype DType) Size() int {
	switch dtype {
	case Uint8:
		return 1
	case Float16, BFloat16:
		return 2
	case Int32, Float32:
		return 4
	case Int64, Float64:
		return 8
	}
	panicf("dtypes: Size() of invalid DType %d", int32(dtype))
	return 0
}

// Memory returns the number of bytes a buffer with count values of this DType occupies.
func (dtype DType) Memory(count int) uint64 {
	return uint64(dtype.Size()) * uint64(count)
}

// GoType returns the reflect.Type of the Go value used to represent this DType.
func (dtype DType) GoType() reflect.Type {
	switch dtype {
	case Uint8:
		return reflect.TypeOf(uint8(0))
	case Int32:
		return reflect.TypeOf(int32(0))
	case Int64:
		return reflect.TypeOf(int64(0))
	case Float16:
		return reflect.TypeOf(float16.Float16(0))
	case Float32:
		return reflect.TypeOf(float32(0))
	case Float64:
		return reflect.TypeOf(float64(0))
	case BFloat16:
		return reflect.TypeOf(bfloat16.BFloat16(0))
	}
	panicf("dtypes: GoType() of invalid DType %d", int32(dtype))
	return nil
}

// FromGoType returns the DType used to represent values of the given Go type,
// or InvalidDType if the type has no corresponding DType.
func FromGoType(t reflect.Type) DType {
	switch t {
	case reflect.TypeOf(uint8(0)):
		return Uint8
	case reflect.TypeOf(int32(0)):
		return Int32
	case reflect.TypeOf(int64(0)):
		return Int64
	case reflect.TypeOf(float16.Float16(0)):
		return Float16
	case reflect.TypeOf(float32(0)):
		return Float32
	case reflect.TypeOf(float64(0)):
		return Float64
	case reflect.TypeOf(bfloat16.BFloat16(0)):
		return BFloat16
	}
	return InvalidDType
}

// FromAny introspects the dtype of a "native" Go value.
func FromAny(value any) DType {
	return FromGoType(reflect.TypeOf(value))
}

// HighestValue for the DType, as the corresponding Go type. For float types it
// is positive infinity where the format defines one.
func (dtype DType) HighestValue() any {
	switch dtype {
	case Uint8:
		return uint8(math.MaxUint8)
	case Int32:
		return int32(math.MaxInt32)
	case Int64:
		return int64(math.MaxInt64)
	case Float16:
		return float16.Inf(1)
	case Float32:
		return float32(math.Inf(1))
	case Float64:
		return math.Inf(1)
	case BFloat16:
		return bfloat16.Inf(1)
	}
	panicf("dtypes: HighestValue() of invalid DType %d", int32(dtype))
	return nil
}

// LowestValue for the DType, as the corresponding Go type. For float types it
// is negative infinity where the format defines one.
func (dtype DType) LowestValue() any {
	switch dtype {
	case Uint8:
		return uint8(0)
	case Int32:
		return int32(math.MinInt32)
	case Int64:
		return int64(math.MinInt64)
	case Float16:
		return float16.Inf(-1)
	case Float32:
		return float32(math.Inf(-1))
	case Float64:
		return math.Inf(-1)
	case BFloat16:
		return bfloat16.Inf(-1)
	}
	panicf("dtypes: LowestValue() of invalid DType %d", int32(dtype))
	return nil
}

// SmallestNonZeroValueForDType is the smallest positive non-zero value
// representable by the float DTypes, and 1 for the integer ones.
func (dtype DType) SmallestNonZeroValueForDType() any {
	switch dtype {
	case Uint8:
		return uint8(1)
	case Int32:
		return int32(1)
	case Int64:
		return int64(1)
	case Float16:
		return float16.Fromfloat32(float32(1.0 / (1 << 24)))
	case Float32:
		return float32(math.SmallestNonzeroFloat32)
	case Float64:
		return math.SmallestNonzeroFloat64
	case BFloat16:
		return bfloat16.SmallestNonZero()
	}
	panicf("dtypes: SmallestNonZeroValueForDType() of invalid DType %d", int32(dtype))
	return nil
}
