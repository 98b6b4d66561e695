package arith

import (
	"github.com/cronokirby/saferith"
)

// Modulus wraps a saferith.Modulus and, when the factorization n = p⋅q is known,
// computes xᵉ (mod n) with one exponentiation modulo each factor.
type Modulus struct {
	// represents modulus n
	*saferith.Modulus
	// crt is nil when the factors are unknown
	crt *crtParams
}

type crtParams struct {
	p, q *saferith.Modulus
	// pNat = p as a Nat, pInv = p⁻¹ (mod q)
	pNat, pInv *saferith.Nat
}

// ModulusFromN creates a simple wrapper around a given modulus n.
// The modulus is not copied.
func ModulusFromN(n *saferith.Modulus) *Modulus {
	return &Modulus{
		Modulus: n,
	}
}

// ModulusFromFactors creates the cached values used to accelerate exponentiation mod n = p⋅q.
// p and q must be coprime.
func ModulusFromFactors(p, q *saferith.Nat) *Modulus {
	nNat := new(saferith.Nat).Mul(p, q, -1)
	pMod := saferith.ModulusFromNat(p)
	qMod := saferith.ModulusFromNat(q)
	return &Modulus{
		Modulus: saferith.ModulusFromNat(nNat),
		crt: &crtParams{
			p:    pMod,
			q:    qMod,
			pNat: new(saferith.Nat).SetNat(p),
			pInv: new(saferith.Nat).ModInverse(p, qMod),
		},
	}
}

// Exp returns xᵉ (mod n).
func (n *Modulus) Exp(x, e *saferith.Nat) *saferith.Nat {
	if n.crt == nil {
		return new(saferith.Nat).Exp(x, e, n.Modulus)
	}
	var xp, xq saferith.Nat
	xp.Exp(x, e, n.crt.p) // xₚ = xᵉ (mod p)
	xq.Exp(x, e, n.crt.q) // x_q = xᵉ (mod q)
	// r = xₚ + p ⋅ [p⁻¹ (mod q)] ⋅ [x_q - xₚ] (mod n)
	r := xq.ModSub(&xq, &xp, n.Modulus)
	r.ModMul(r, n.crt.pInv, n.Modulus)
	r.ModMul(r, n.crt.pNat, n.Modulus)
	r.ModAdd(r, &xp, n.Modulus)
	return r
}

// ExpI returns xᵉ (mod n), for a possibly negative e.
// x must be a unit when e is negative.
func (n *Modulus) ExpI(x *saferith.Nat, e *saferith.Int) *saferith.Nat {
	if n.crt == nil {
		return new(saferith.Nat).ExpI(x, e, n.Modulus)
	}
	y := n.Exp(x, e.Abs())
	inverted := new(saferith.Nat).ModInverse(y, n.Modulus)
	y.CondAssign(e.IsNegative(), inverted)
	return y
}

// HasFactorization reports whether exponentiation uses the CRT.
func (n *Modulus) HasFactorization() bool {
	return n.crt != nil
}
