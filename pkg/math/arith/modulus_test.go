package arith

import (
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/paillier-zk/internal/params"
)

// p, q are 1024 bit primes; they are only required to be coprime here.
var (
	pHex = "D08769E92F80F7FDFB85EC02AFFDAED0FDE2782070757F191DCDC4D108110AC1E31C07FC253B5F7B91C5D9F203AA0572D3F2062A3D2904C535C6ACCA7D5674E1C2640720E762C72B66931F483C2D910908CF02EA6723A0CBBB1016CA696C38FEAC59B31E40584C8141889A11F7A38F5B17811D11F42CD15B8470F11C6183802B"
	qHex = "C21239C3484FC3C8409F40A9A22FABFFE26CA10C27506E3E017C2EC8C4B98D7A6D30DED0686869884BE9BAD27F5241B7313F73D19E9E4B384FABF9554B5BB4D517CBAC0268420C63D545612C9ADABEEDF20F94244E7F8F2080B0C675AC98D97C580D43375F999B1AC127EC580B89B2D302EF33DD5FD8474A241B0398F6088CA7"
)

func moduli(t *testing.T) (fast, slow *Modulus) {
	p, err := new(saferith.Nat).SetHex(pHex)
	require.NoError(t, err)
	q, err := new(saferith.Nat).SetHex(qHex)
	require.NoError(t, err)
	n := saferith.ModulusFromNat(new(saferith.Nat).Mul(p, q, -1))
	return ModulusFromFactors(p, q), ModulusFromN(n)
}

func randomNat(r *mrand.Rand, bytes int) *saferith.Nat {
	buf := make([]byte, bytes)
	_, _ = r.Read(buf)
	return new(saferith.Nat).SetBytes(buf)
}

func TestModulus_Exp(t *testing.T) {
	r := mrand.New(mrand.NewSource(0))
	mFast, mSlow := moduli(t)
	assert.True(t, mFast.Nat().Eq(mSlow.Nat()) == 1, "n moduli should be the same")
	assert.True(t, mFast.HasFactorization())
	assert.False(t, mSlow.HasFactorization())

	x := new(saferith.Nat).Mod(randomNat(r, params.BytesIntModN), mSlow.Modulus)
	e := randomNat(r, 300)
	eNeg := new(saferith.Int).SetNat(e)
	eNeg.Neg(1)

	yExpected := new(saferith.Nat).Exp(x, e, mSlow.Modulus)
	assert.True(t, yExpected.Eq(mFast.Exp(x, e)) == 1, "exponentiation with acceleration should give the same result")
	assert.True(t, yExpected.Eq(mSlow.Exp(x, e)) == 1, "exponentiation without acceleration should give the same result")

	yExpected.ExpI(x, eNeg, mSlow.Modulus)
	assert.True(t, yExpected.Eq(mFast.ExpI(x, eNeg)) == 1, "negative exponentiation with acceleration should give the same result")
	assert.True(t, yExpected.Eq(mSlow.ExpI(x, eNeg)) == 1, "negative exponentiation without acceleration should give the same result")
}

func TestIsValidNatModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 11)
	assert.True(t, IsValidNatModN(n, new(saferith.Nat).SetUint64(2), new(saferith.Nat).SetUint64(32)))
	assert.False(t, IsValidNatModN(n, new(saferith.Nat).SetUint64(0)))
	assert.False(t, IsValidNatModN(n, new(saferith.Nat).SetUint64(33)))
	assert.False(t, IsValidNatModN(n, new(saferith.Nat).SetUint64(6)))
	assert.False(t, IsValidNatModN(n, nil))
	assert.False(t, IsValidNatModN(nil))
}

func TestIntervals(t *testing.T) {
	one := new(saferith.Nat).SetUint64(1)
	pow := func(bits uint) *saferith.Int {
		return new(saferith.Int).SetNat(new(saferith.Nat).Lsh(one, bits, -1))
	}
	minusOne := func(x *saferith.Int) *saferith.Int {
		m := new(saferith.Int).SetUint64(1)
		m.Neg(1)
		return new(saferith.Int).Add(x, m, -1)
	}

	twoL := pow(params.L)
	assert.False(t, IsInIntervalL(twoL))
	assert.True(t, IsInIntervalL(minusOne(twoL)))
	assert.False(t, IsInIntervalL(nil))

	negative := new(saferith.Int).SetInt(minusOne(twoL))
	negative.Neg(1)
	assert.True(t, IsInIntervalL(negative))

	assert.True(t, IsInIntervalLEps(minusOne(pow(params.LPlusEpsilon))))
	assert.False(t, IsInIntervalLEps(pow(params.LPlusEpsilon)))
	assert.True(t, IsInIntervalLPrime(minusOne(pow(params.LPrime))))
	assert.False(t, IsInIntervalLPrimeEps(pow(params.LPrimePlusEpsilon)))
	assert.True(t, IsInIntervalLEpsPlus1RootN(pow(params.LPlusEpsilon+params.BitsIntModN/2)))
}

func TestJacobi(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 7)
	// 2 is a non-residue mod 3 and a residue mod 7
	assert.Equal(t, -1, Jacobi(new(saferith.Nat).SetUint64(2), n))
	assert.Equal(t, 1, Jacobi(new(saferith.Nat).SetUint64(4), n))
	assert.Equal(t, 0, Jacobi(new(saferith.Nat).SetUint64(7), n))
	assert.True(t, IsProbablyPrime(new(saferith.Nat).SetUint64(1031)))
	assert.False(t, IsProbablyPrime(new(saferith.Nat).SetUint64(1019*1031)))
}
