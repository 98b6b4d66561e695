package test

import (
	"github.com/cronokirby/saferith"
)

// Pow2 returns 2ᵇⁱᵗˢ.
func Pow2(bits int) *saferith.Int {
	one := new(saferith.Nat).SetUint64(1)
	return new(saferith.Int).SetNat(new(saferith.Nat).Lsh(one, uint(bits), -1))
}

// Pow2Minus1 returns 2ᵇⁱᵗˢ - 1.
func Pow2Minus1(bits int) *saferith.Int {
	minusOne := new(saferith.Int).SetUint64(1)
	minusOne.Neg(1)
	return new(saferith.Int).Add(Pow2(bits), minusOne, -1)
}

// AddOne returns x + 1.
func AddOne(x *saferith.Int) *saferith.Int {
	return new(saferith.Int).Add(x, new(saferith.Int).SetUint64(1), -1)
}

// MulModN returns x⋅y mod n.
func MulModN(x, y *saferith.Nat, n *saferith.Modulus) *saferith.Nat {
	return new(saferith.Nat).ModMul(x, y, n)
}
