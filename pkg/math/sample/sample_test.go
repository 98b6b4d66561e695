package sample

import (
	"bytes"
	"crypto/rand"
	"io"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/paillier-zk/internal/params"
	"github.com/taurusgroup/paillier-zk/pkg/math/arith"
	"github.com/taurusgroup/paillier-zk/pkg/math/curve"
	"github.com/taurusgroup/paillier-zk/pkg/pool"
)

func TestModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 11 * 65519)
	for i := 0; i < 100; i++ {
		x, err := ModN(rand.Reader, n)
		require.NoError(t, err)
		_, _, lt := x.CmpMod(n)
		assert.Equal(t, 1, int(lt), "ModN generated a number >= %v: %v", n, x)
	}
}

func TestUnitModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 11 * 65519)
	for i := 0; i < 100; i++ {
		x, err := UnitModN(rand.Reader, n)
		require.NoError(t, err)
		assert.True(t, arith.IsValidNatModN(n, x))
	}
}

func TestQNR(t *testing.T) {
	n := saferith.ModulusFromUint64(1019 * 1031)
	w, err := QNR(rand.Reader, n)
	require.NoError(t, err)
	assert.Equal(t, -1, arith.Jacobi(w, n))

	// every element of ℤ₉ has Jacobi symbol 0 or 1
	_, err = QNR(rand.Reader, saferith.ModulusFromUint64(9))
	assert.ErrorIs(t, err, ErrMaxIterations)
}

func TestSampling_ExhaustedReader(t *testing.T) {
	empty := bytes.NewReader(nil)
	_, err := IntervalLEps(empty)
	assert.Error(t, err)
	_, err = ModN(empty, saferith.ModulusFromUint64(1000))
	assert.Error(t, err)
	_, err = Bits(empty, 10)
	assert.Error(t, err)
}

func TestIntervals(t *testing.T) {
	for i := 0; i < 20; i++ {
		x, err := IntervalL(rand.Reader)
		require.NoError(t, err)
		assert.True(t, arith.IsInIntervalL(x))

		x, err = IntervalLEps(rand.Reader)
		require.NoError(t, err)
		assert.True(t, arith.IsInIntervalLEps(x))

		x, err = IntervalLPrimeEps(rand.Reader)
		require.NoError(t, err)
		assert.True(t, arith.IsInIntervalLPrimeEps(x))

		x, err = IntervalScalar(rand.Reader, curve.Secp256k1{})
		require.NoError(t, err)
		assert.LessOrEqual(t, x.TrueLen(), 256)
	}
}

func TestPedersen(t *testing.T) {
	n := saferith.ModulusFromUint64(1019 * 1031)
	phi := new(saferith.Nat).SetUint64(1018 * 1030)

	s, tt, lambda, err := Pedersen(rand.Reader, phi, n)
	require.NoError(t, err)
	expected := new(saferith.Nat).Exp(tt, lambda, n)
	assert.Equal(t, 1, int(expected.Eq(s)))
}

func TestBits(t *testing.T) {
	bits, err := Bits(bytes.NewReader([]byte{0, 1, 2, 3}), 4)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, true}, bits)
}

const blumPrimeProbabilityIterations = 20

func TestBlumPrime(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping safe prime generation in short mode")
	}
	prime, err := BlumPrime(rand.Reader)
	require.NoError(t, err)
	p := prime.Big()
	assert.Equal(t, params.BitsBlumPrime, p.BitLen())
	assert.True(t, p.ProbablyPrime(blumPrimeProbabilityIterations), "BlumPrime generated a non prime number: %v", p)
	q := new(big.Int).Rsh(p, 1)
	assert.True(t, q.ProbablyPrime(blumPrimeProbabilityIterations), "p isn't safe because (p - 1) / 2 isn't prime")
	assert.Equal(t, uint(3), p.Bit(0)+2*p.Bit(1))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestBlumPrime_FailingReader(t *testing.T) {
	p, err := BlumPrime(failingReader{})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Nil(t, p)
}

func TestPaillier_FailingReader(t *testing.T) {
	for _, pl := range []*pool.Pool{nil, pool.NewPool(4)} {
		p, q, err := Paillier(failingReader{}, pl)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		assert.Nil(t, p)
		assert.Nil(t, q)
		pl.TearDown()
	}
}

// This exists to save the results of functions we want to benchmark, to avoid
// having them optimized away.
var resultNat *saferith.Nat

func BenchmarkBlumPrime(b *testing.B) {
	for i := 0; i < b.N; i++ {
		resultNat, _ = BlumPrime(rand.Reader)
	}
}

func BenchmarkModN(b *testing.B) {
	b.StopTimer()
	nBytes := make([]byte, (params.BitsPaillier+7)/8)
	_, _ = rand.Read(nBytes)
	n := saferith.ModulusFromBytes(nBytes)
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		resultNat, _ = ModN(rand.Reader, n)
	}
}
