package sample

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/pkg/math/arith"
	"github.com/taurusgroup/paillier-zk/pkg/math/curve"
)

// maxIterations bounds every rejection-sampling loop in this package.
//
// Each loop accepts a candidate with probability at least 1/2 on well-formed input,
// so exhausting the budget means the input (or the randomness source) is broken.
const maxIterations = 255

// ErrMaxIterations is returned when a rejection-sampling loop exhausts its budget.
var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func readBits(rand io.Reader, buf []byte) error {
	if _, err := io.ReadFull(rand, buf); err != nil {
		return fmt.Errorf("sample: read randomness: %w", err)
	}
	return nil
}

// ModN samples an element of ℤₙ.
func ModN(rand io.Reader, n *saferith.Modulus) (*saferith.Nat, error) {
	bits := n.BitLen()
	buf := make([]byte, (bits+7)/8)
	// clear the bits above the size of n, so that a candidate is accepted with probability ≥ ½
	mask := byte(0xff >> (uint(8-bits%8) % 8))
	out := new(saferith.Nat)
	for i := 0; i < maxIterations; i++ {
		if err := readBits(rand, buf); err != nil {
			return nil, err
		}
		buf[0] &= mask
		out.SetBytes(buf)
		if _, _, lt := out.CmpMod(n); lt == 1 {
			return out, nil
		}
	}
	return nil, ErrMaxIterations
}

// UnitModN returns a u ∈ ℤₙˣ.
func UnitModN(rand io.Reader, n *saferith.Modulus) (*saferith.Nat, error) {
	for i := 0; i < maxIterations; i++ {
		u, err := ModN(rand, n)
		if err != nil {
			return nil, err
		}
		if u.IsUnit(n) == 1 {
			return u, nil
		}
	}
	return nil, ErrMaxIterations
}

// QNR samples a random w ∈ ℤₙ with Jacobi symbol (w/n) = -1.
//
// When n is a Blum integer, such a w is a quadratic non-residue modulo both factors or neither,
// and -1 has the same symbol, which is what the modulus proof relies on.
func QNR(rand io.Reader, n *saferith.Modulus) (*saferith.Nat, error) {
	for i := 0; i < maxIterations; i++ {
		w, err := ModN(rand, n)
		if err != nil {
			return nil, err
		}
		if arith.Jacobi(w, n) == -1 {
			return w, nil
		}
	}
	return nil, ErrMaxIterations
}

// Pedersen generates the s, t, λ such that s = tˡ.
func Pedersen(rand io.Reader, phi *saferith.Nat, n *saferith.Modulus) (s, t, lambda *saferith.Nat, err error) {
	phiMod := saferith.ModulusFromNat(phi)

	lambda, err = ModN(rand, phiMod)
	if err != nil {
		return nil, nil, nil, err
	}

	tau, err := UnitModN(rand, n)
	if err != nil {
		return nil, nil, nil, err
	}
	// t = τ² mod N
	t = tau.ModMul(tau, tau, n)
	// s = tˡ mod N
	s = new(saferith.Nat).Exp(t, lambda, n)

	return s, t, lambda, nil
}

// Bits returns count challenge bits, one per byte read from rand.
func Bits(rand io.Reader, count int) ([]bool, error) {
	buf := make([]byte, count)
	if err := readBits(rand, buf); err != nil {
		return nil, err
	}
	out := make([]bool, count)
	for i := range out {
		out[i] = buf[i]&1 == 1
	}
	return out, nil
}

// Scalar returns a new uniformly random element of the group's scalar field.
func Scalar(rand io.Reader, group curve.Curve) (curve.Scalar, error) {
	x, err := ModN(rand, group.Order())
	if err != nil {
		return nil, err
	}
	return group.NewScalar().SetNat(x), nil
}
