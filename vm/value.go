package vm

import (
	"fmt"
	"math/bits"
)

// ---------------------------------------------------------------------------
// Value: a field element
// ---------------------------------------------------------------------------

// Modulus is the prime defining the execution field: 2^64 - 2^32 + 1.
// All stack values and operation immediates are elements of this field.
const Modulus uint64 = 0xFFFFFFFF00000001

// Value is a field element in canonical form (always < Modulus).
type Value uint64

// Common elements, used by branch dispatch and the guard operations.
const (
	Zero Value = 0
	One  Value = 1
)

// NewValue reduces v into the field. Inputs at or above the modulus wrap
// around, so every Value is canonical by construction.
func NewValue(v uint64) Value {
	if v >= Modulus {
		v -= Modulus
	}
	return Value(v)
}

// Add returns a + b in the field.
func (a Value) Add(b Value) Value {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 || sum >= Modulus {
		sum -= Modulus
	}
	return Value(sum)
}

// Sub returns a - b in the field.
func (a Value) Sub(b Value) Value {
	d, borrow := bits.Sub64(uint64(a), uint64(b), 0)
	if borrow != 0 {
		d += Modulus
	}
	return Value(d)
}

// Mul returns a * b in the field.
func (a Value) Mul(b Value) Value {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return Value(reduce(hi, lo))
}

// Neg returns -a in the field.
func (a Value) Neg() Value {
	return Zero.Sub(a)
}

// Not returns 1 - a. On a binary value this is boolean negation; the
// assert that follows a not in a guard rejects everything else.
func (a Value) Not() Value {
	return One.Sub(a)
}

// reduce folds a 128-bit product into the field using the identities
// 2^64 = 2^32 - 1 and 2^96 = -1 (mod Modulus).
func reduce(hi, lo uint64) uint64 {
	const epsilon = uint64(0xFFFFFFFF) // 2^32 - 1
	hiHi := hi >> 32
	hiLo := hi & epsilon

	t, borrow := bits.Sub64(lo, hiHi, 0)
	if borrow != 0 {
		t -= epsilon
	}
	r, carry := bits.Add64(t, hiLo*epsilon, 0)
	if carry != 0 || r >= Modulus {
		r -= Modulus
	}
	return r
}

func (a Value) String() string {
	return fmt.Sprintf("%d", uint64(a))
}
