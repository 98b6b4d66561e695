package sample

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/internal/params"
	"github.com/taurusgroup/paillier-zk/pkg/math/curve"
)

// sampleNeg returns an integer x with |x| < 2^bits, with the sign taken from an extra byte.
func sampleNeg(rand io.Reader, bits int) (*saferith.Int, error) {
	buf := make([]byte, bits/8+1)
	if err := readBits(rand, buf); err != nil {
		return nil, err
	}
	neg := saferith.Choice(buf[0] & 1)
	out := new(saferith.Int).SetBytes(buf[1:])
	out.Neg(neg)
	return out, nil
}

// IntervalL returns an integer in the range ± 2ˡ, but with constant-time properties.
func IntervalL(rand io.Reader) (*saferith.Int, error) {
	return sampleNeg(rand, params.L)
}

// IntervalLPrime returns an integer in the range ± 2ˡ', but with constant-time properties.
func IntervalLPrime(rand io.Reader) (*saferith.Int, error) {
	return sampleNeg(rand, params.LPrime)
}

// IntervalLEps returns an integer in the range ± 2ˡ⁺ᵉ, but with constant-time properties.
func IntervalLEps(rand io.Reader) (*saferith.Int, error) {
	return sampleNeg(rand, params.LPlusEpsilon)
}

// IntervalLPrimeEps returns an integer in the range ± 2ˡ'⁺ᵉ, but with constant-time properties.
func IntervalLPrimeEps(rand io.Reader) (*saferith.Int, error) {
	return sampleNeg(rand, params.LPrimePlusEpsilon)
}

// IntervalLN returns an integer in the range ± 2ˡ•N, where N is the size of a Paillier modulus.
func IntervalLN(rand io.Reader) (*saferith.Int, error) {
	return sampleNeg(rand, params.L+params.BitsIntModN)
}

// IntervalLEpsN returns an integer in the range ± 2ˡ⁺ᵉ•N, where N is the size of a Paillier modulus.
func IntervalLEpsN(rand io.Reader) (*saferith.Int, error) {
	return sampleNeg(rand, params.LPlusEpsilon+params.BitsIntModN)
}

// IntervalLN2 returns an integer in the range ± 2ˡ•N², where N is the size of a Paillier modulus.
func IntervalLN2(rand io.Reader) (*saferith.Int, error) {
	return sampleNeg(rand, params.L+2*params.BitsIntModN)
}

// IntervalLEpsN2 returns an integer in the range ± 2ˡ⁺ᵉ•N², where N is the size of a Paillier modulus.
func IntervalLEpsN2(rand io.Reader) (*saferith.Int, error) {
	return sampleNeg(rand, params.LPlusEpsilon+2*params.BitsIntModN)
}

// IntervalLEpsRootN returns an integer in the range ± 2ˡ⁺ᵉ•√N, where N is the size of a Paillier modulus.
func IntervalLEpsRootN(rand io.Reader) (*saferith.Int, error) {
	return sampleNeg(rand, params.LPlusEpsilon+params.BitsIntModN/2)
}

// IntervalEps returns an integer in the range ± 2ᵉ.
func IntervalEps(rand io.Reader) (*saferith.Int, error) {
	return sampleNeg(rand, params.Epsilon)
}

// IntervalScalar returns an integer in the range ±q, with q the size of a Scalar.
func IntervalScalar(rand io.Reader, group curve.Curve) (*saferith.Int, error) {
	return sampleNeg(rand, group.ScalarBits())
}
