package dbchanges

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Number is the canonical, exact representation of numeric cells and literals.
//
// Finite numbers are held as a big.Rat, so values that originate from different driver
// widths (int16, int64, float32, numeric, ...) compare by their mathematical value.
// Floats are converted through their shortest decimal rendering, so float32(0.1) equals 0.1.
// NaN and the infinities are kept as special values.
type Number struct {
	rat     *big.Rat
	special float64
}

// NumberFromInt64 builds a Number from an int64.
func NumberFromInt64(i int64) Number {
	return Number{rat: new(big.Rat).SetInt64(i)}
}

// NumberFromUint64 builds a Number from an uint64.
func NumberFromUint64(u uint64) Number {
	return Number{rat: new(big.Rat).SetUint64(u)}
}

// NumberFromFloat64 builds a Number from a float64 using its shortest decimal rendering.
func NumberFromFloat64(f float64) Number {
	return numberFromFloat(f, 64)
}

// NumberFromFloat32 builds a Number from a float32 using its shortest decimal rendering.
func NumberFromFloat32(f float32) Number {
	return numberFromFloat(float64(f), 32)
}

func numberFromFloat(f float64, bitSize int) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{special: f}
	}

	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, bitSize))
	if !ok {
		return Number{rat: new(big.Rat).SetFloat64(f)}
	}

	return Number{rat: r}
}

// NumberFromBigInt builds a Number from a big.Int; nil yields zero.
func NumberFromBigInt(i *big.Int) Number {
	if i == nil {
		return NumberFromInt64(0)
	}

	return Number{rat: new(big.Rat).SetInt(i)}
}

// NumberFromRat builds a Number from a big.Rat; nil yields zero.
func NumberFromRat(r *big.Rat) Number {
	if r == nil {
		return NumberFromInt64(0)
	}

	return Number{rat: new(big.Rat).Set(r)}
}

// NumberFromBigFloat builds a Number from a big.Float; nil yields zero.
func NumberFromBigFloat(f *big.Float) Number {
	if f == nil {
		return NumberFromInt64(0)
	}

	if f.IsInf() {
		if f.Signbit() {
			return Number{special: math.Inf(-1)}
		}
		return Number{special: math.Inf(1)}
	}

	r, _ := f.Rat(nil)

	return Number{rat: r}
}

// NumberFromScaled builds the Number unscaled * 10^exp, the representation used by decimal driver types.
func NumberFromScaled(unscaled *big.Int, exp int32) Number {
	if unscaled == nil {
		return NumberFromInt64(0)
	}

	r := new(big.Rat).SetInt(unscaled)
	if exp == 0 {
		return Number{rat: r}
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(absInt32(exp))), nil)
	if exp > 0 {
		return Number{rat: r.Mul(r, new(big.Rat).SetInt(scale))}
	}

	return Number{rat: r.Quo(r, new(big.Rat).SetInt(scale))}
}

func absInt32(i int32) int32 {
	if i < 0 {
		return -i
	}
	return i
}

// ParseNumber parses a decimal or scientific text rendering of a number.
func ParseNumber(s string) (Number, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.ContainsAny(trimmed, "/_") {
		return Number{}, errors.Join(ErrUnparsableLiteral, errors.New("not a number: \""+s+"\""))
	}

	switch strings.ToLower(trimmed) {
	case "nan":
		return Number{special: math.NaN()}, nil
	case "inf", "+inf", "infinity", "+infinity":
		return Number{special: math.Inf(1)}, nil
	case "-inf", "-infinity":
		return Number{special: math.Inf(-1)}, nil
	}

	r, ok := new(big.Rat).SetString(trimmed)
	if !ok {
		return Number{}, errors.Join(ErrUnparsableLiteral, errors.New("not a number: \""+s+"\""))
	}

	return Number{rat: r}, nil
}

// IsFinite reports whether the Number is neither NaN nor infinite.
func (n Number) IsFinite() bool {
	return n.rat != nil || n.special == 0
}

func (n Number) ratOrZero() *big.Rat {
	if n.rat == nil {
		return new(big.Rat)
	}
	return n.rat
}

func (n Number) isNaN() bool {
	return n.rat == nil && math.IsNaN(n.special)
}

// Cmp compares two Numbers by mathematical value.
// The boolean result is false when one of them is NaN, which is unordered.
func (n Number) Cmp(other Number) (int, bool) {
	if n.isNaN() || other.isNaN() {
		return 0, false
	}

	if n.IsFinite() && other.IsFinite() {
		return n.ratOrZero().Cmp(other.ratOrZero()), true
	}

	return compareFloats(n.Float64(), other.Float64()), true
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports whether both Numbers have the same mathematical value.
// Unlike Cmp, it treats NaN as equal to NaN.
func (n Number) Equal(other Number) bool {
	if n.isNaN() || other.isNaN() {
		return n.isNaN() && other.isNaN()
	}

	c, _ := n.Cmp(other)

	return c == 0
}

// IsWithin reports whether |n - other| <= tolerance.
func (n Number) IsWithin(other Number, tolerance Number) bool {
	if !n.IsFinite() || !other.IsFinite() {
		return !n.isNaN() && n.Equal(other)
	}

	if !tolerance.IsFinite() {
		return !tolerance.isNaN() && tolerance.special > 0
	}

	diff := new(big.Rat).Sub(n.ratOrZero(), other.ratOrZero())
	diff.Abs(diff)

	return diff.Cmp(tolerance.ratOrZero()) <= 0
}

// Sign returns -1, 0 or +1. NaN yields 0.
func (n Number) Sign() int {
	if n.rat != nil {
		return n.rat.Sign()
	}

	return compareFloats(n.special, 0)
}

// Float64 returns the nearest float64 value.
func (n Number) Float64() float64 {
	if n.rat == nil {
		return n.special
	}

	f, _ := n.rat.Float64()

	return f
}

// Rat returns a copy of the exact value, or nil for NaN and the infinities.
func (n Number) Rat() *big.Rat {
	if n.rat == nil {
		return nil
	}

	return new(big.Rat).Set(n.rat)
}

// String renders the Number as plain decimal text when the value has a finite decimal expansion.
func (n Number) String() string {
	if n.rat == nil {
		return strconv.FormatFloat(n.special, 'g', -1, 64)
	}

	if n.rat.IsInt() {
		return n.rat.Num().String()
	}

	if prec, exact := n.rat.FloatPrec(); exact {
		return n.rat.FloatString(prec)
	}

	return n.rat.RatString()
}

func nan() float64    { return math.NaN() }
func posInf() float64 { return math.Inf(1) }
func negInf() float64 { return math.Inf(-1) }
