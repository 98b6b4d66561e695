package zkenc

import (
	"crypto/rand"
	mrand "math/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/paillier-zk/internal/params"
	"github.com/taurusgroup/paillier-zk/internal/test"
	"github.com/taurusgroup/paillier-zk/pkg/hash"
	"github.com/taurusgroup/paillier-zk/pkg/math/curve"
	"github.com/taurusgroup/paillier-zk/pkg/math/sample"
	"github.com/taurusgroup/paillier-zk/pkg/zk"
	"github.com/taurusgroup/paillier-zk/pkg/zk/codec"
)

func setup(t *testing.T, k *saferith.Int) (Public, Private) {
	fixtures := test.ZK()
	prover := fixtures.Prover.PublicKey

	K, rho, err := prover.Enc(rand.Reader, k)
	require.NoError(t, err)
	return Public{
			K:      K,
			Prover: prover,
			Aux:    fixtures.Aux,
		}, Private{
			K:   k,
			Rho: rho,
		}
}

func TestEnc(t *testing.T) {
	group := curve.Secp256k1{}

	k, err := sample.IntervalL(rand.Reader)
	require.NoError(t, err)
	public, private := setup(t, k)

	h := test.SessionHash()
	proof, err := NewProof(group, rand.Reader, h, public, private)
	require.NoError(t, err)
	assert.NoError(t, proof.Verify(group, h, public))
	assert.False(t, proof.IsValid(Public{}), "an empty statement has nothing to check against")

	out, err := codec.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, codec.Unmarshal(out, proof2), "failed to unmarshal proof")
	out2, err := codec.Marshal(proof2)
	require.NoError(t, err, "failed to marshal 2nd proof")
	assert.Equal(t, out, out2, "encoding should be canonical")
	proof3 := &Proof{}
	require.NoError(t, codec.Unmarshal(out2, proof3), "failed to unmarshal 2nd proof")

	assert.NoError(t, proof3.Verify(group, h, public))

	sealed, err := codec.Seal(Relation, proof)
	require.NoError(t, err)
	opened := &Proof{}
	require.NoError(t, codec.Open(sealed, Relation, opened))
	assert.NoError(t, opened.Verify(group, h, public))
	assert.ErrorIs(t, codec.Open(sealed, "zkfac", opened), zk.ErrMalformedProof)
}

func TestEnc_Statement_RoundTrip(t *testing.T) {
	k, err := sample.IntervalL(rand.Reader)
	require.NoError(t, err)
	public, _ := setup(t, k)

	out, err := codec.Marshal(public)
	require.NoError(t, err)
	var decoded Public
	require.NoError(t, codec.Unmarshal(out, &decoded))
	out2, err := codec.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, out, out2)
	assert.True(t, decoded.K.Equal(public.K))
	assert.True(t, decoded.Prover.Equal(public.Prover))
}

func TestEnc_Tamper(t *testing.T) {
	group := curve.Secp256k1{}
	k, err := sample.IntervalL(rand.Reader)
	require.NoError(t, err)
	public, private := setup(t, k)
	h := hash.New()
	N := public.Prover.N()

	mutations := map[string]func(p *Proof){
		"Z1":  func(p *Proof) { p.Z1 = test.AddOne(p.Z1) },
		"Z2":  func(p *Proof) { p.Z2 = test.MulModN(p.Z2, p.Z2, N) },
		"Z3":  func(p *Proof) { p.Z3 = test.AddOne(p.Z3) },
		"S":   func(p *Proof) { p.S = test.MulModN(p.S, public.Aux.S(), public.Aux.N()) },
		"A":   func(p *Proof) { p.A = p.A.Clone().Add(public.Prover, public.K) },
		"C":   func(p *Proof) { p.C = test.MulModN(p.C, public.Aux.T(), public.Aux.N()) },
		"nil": func(p *Proof) { p.Z2 = nil },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			proof, err := NewProof(group, rand.Reader, h, public, private)
			require.NoError(t, err)
			mutate(proof)
			err = proof.Verify(group, h, public)
			assert.Error(t, err)
			assert.True(t, zk.IsRejection(err), "unexpected error kind: %v", err)
		})
	}

	t.Run("statement", func(t *testing.T) {
		proof, err := NewProof(group, rand.Reader, h, public, private)
		require.NoError(t, err)
		other, _ := setup(t, k)
		assert.ErrorIs(t, proof.Verify(group, h, other), zk.ErrVerificationFailed)
	})

	t.Run("bytes", func(t *testing.T) {
		proof, err := NewProof(group, rand.Reader, h, public, private)
		require.NoError(t, err)
		data, err := codec.Marshal(proof)
		require.NoError(t, err)
		r := mrand.New(mrand.NewSource(1))
		for i := 0; i < 16; i++ {
			flipped := append([]byte(nil), data...)
			bit := r.Intn(8 * len(flipped))
			flipped[bit/8] ^= 1 << (bit % 8)
			decoded := &Proof{}
			if codec.Unmarshal(flipped, decoded) != nil {
				continue
			}
			assert.Error(t, decoded.Verify(group, h, public), "flipped bit %d", bit)
		}
	})
}

func TestEnc_Context(t *testing.T) {
	group := curve.Secp256k1{}
	k, err := sample.IntervalL(rand.Reader)
	require.NoError(t, err)
	public, private := setup(t, k)

	proof, err := NewProof(group, rand.Reader, hash.NewWithContext([]byte("session A")), public, private)
	require.NoError(t, err)
	assert.NoError(t, proof.Verify(group, hash.NewWithContext([]byte("session A")), public))
	assert.ErrorIs(t, proof.Verify(group, hash.NewWithContext([]byte("session B")), public), zk.ErrVerificationFailed)
}

func TestEnc_Range(t *testing.T) {
	group := curve.Secp256k1{}

	public, private := setup(t, test.Pow2Minus1(params.L))
	proof, err := NewProof(group, rand.Reader, hash.New(), public, private)
	require.NoError(t, err)
	assert.NoError(t, proof.Verify(group, hash.New(), public))

	public, private = setup(t, test.Pow2(params.L))
	_, err = NewProof(group, rand.Reader, hash.New(), public, private)
	assert.ErrorIs(t, err, zk.ErrInvalidStatement)

	// plaintexts are signed
	public, private = setup(t, test.Pow2Minus1(params.L).Neg(1))
	proof, err = NewProof(group, rand.Reader, hash.New(), public, private)
	require.NoError(t, err)
	assert.NoError(t, proof.Verify(group, hash.New(), public))

	public, private = setup(t, test.Pow2(params.L).Neg(1))
	_, err = NewProof(group, rand.Reader, hash.New(), public, private)
	assert.ErrorIs(t, err, zk.ErrInvalidStatement)
}

func TestEnc_InvalidWitness(t *testing.T) {
	group := curve.Secp256k1{}
	k, err := sample.IntervalL(rand.Reader)
	require.NoError(t, err)
	public, private := setup(t, k)

	private.K = test.AddOne(private.K)
	_, err = NewProof(group, rand.Reader, hash.New(), public, private)
	assert.ErrorIs(t, err, zk.ErrInvalidStatement)

	_, err = NewProof(group, rand.Reader, hash.New(), Public{}, private)
	assert.ErrorIs(t, err, zk.ErrInvalidStatement)
}
