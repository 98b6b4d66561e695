package zkmod

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/paillier-zk/internal/test"
	"github.com/taurusgroup/paillier-zk/pkg/hash"
	"github.com/taurusgroup/paillier-zk/pkg/math/sample"
	"github.com/taurusgroup/paillier-zk/pkg/pool"
	"github.com/taurusgroup/paillier-zk/pkg/zk"
	"github.com/taurusgroup/paillier-zk/pkg/zk/codec"
)

func setup() (Public, Private) {
	sk := test.ZK().Prover
	return Public{N: sk.N()}, Private{
		P:   sk.P(),
		Q:   sk.Q(),
		Phi: sk.Phi(),
	}
}

func TestMod(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	public, private := setup()

	h := test.SessionHash()
	proof, err := NewProof(rand.Reader, h, public, private, pl)
	require.NoError(t, err)
	assert.NoError(t, proof.Verify(h, public, pl))
	assert.False(t, proof.IsValid(Public{}), "an empty statement has nothing to check against")
	assert.NoError(t, proof.Verify(h, public, nil), "verification should not depend on the pool")

	out, err := codec.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, codec.Unmarshal(out, proof2), "failed to unmarshal proof")
	out2, err := codec.Marshal(proof2)
	require.NoError(t, err, "failed to marshal 2nd proof")
	assert.Equal(t, out, out2, "encoding should be canonical")
	proof3 := &Proof{}
	require.NoError(t, codec.Unmarshal(out2, proof3), "failed to unmarshal 2nd proof")

	assert.NoError(t, proof3.Verify(h, public, pl))

	proof.W = new(saferith.Nat).SetUint64(0)
	for idx := range proof.Responses {
		proof.Responses[idx].X = new(saferith.Nat).SetUint64(0)
	}

	assert.ErrorIs(t, proof.Verify(h, public, pl), zk.ErrMalformedProof, "proof should have failed")
}

func TestMod_Tamper(t *testing.T) {
	public, private := setup()
	N := public.N

	mutations := map[string]func(p *Proof){
		"X":         func(p *Proof) { p.Responses[3].X = test.MulModN(p.Responses[3].X, p.W, N) },
		"Z":         func(p *Proof) { p.Responses[0].Z = test.MulModN(p.Responses[0].Z, p.W, N) },
		"A":         func(p *Proof) { p.Responses[7].A = !p.Responses[7].A },
		"B":         func(p *Proof) { p.Responses[11].B = !p.Responses[11].B },
		"W":         func(p *Proof) { p.W = test.MulModN(p.W, p.W, N) },
		"truncated": func(p *Proof) { p.Responses = p.Responses[1:] },
		"extended":  func(p *Proof) { p.Responses = append(p.Responses, p.Responses[0]) },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			proof, err := NewProof(rand.Reader, hash.New(), public, private, nil)
			require.NoError(t, err)
			mutate(proof)
			err = proof.Verify(hash.New(), public, nil)
			assert.Error(t, err)
			assert.True(t, zk.IsRejection(err), "unexpected error kind: %v", err)
		})
	}

	t.Run("statement", func(t *testing.T) {
		proof, err := NewProof(rand.Reader, hash.New(), public, private, nil)
		require.NoError(t, err)
		other := Public{N: test.ZK().Verifier.N()}
		assert.True(t, zk.IsRejection(proof.Verify(hash.New(), other, nil)))
	})
}

func TestMod_Context(t *testing.T) {
	public, private := setup()

	proof, err := NewProof(rand.Reader, hash.NewWithContext([]byte("session A")), public, private, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, proof.Verify(hash.NewWithContext([]byte("session B")), public, nil), zk.ErrVerificationFailed)
}

func TestMod_PrimeModulus(t *testing.T) {
	sk := test.ZK().Prover
	prime := saferith.ModulusFromNat(sk.P())
	public := Public{N: prime}

	// a prime has no factorization to prove
	one := new(saferith.Nat).SetUint64(1)
	_, err := NewProof(rand.Reader, hash.New(), public, Private{P: sk.P(), Q: one, Phi: sk.Phi()}, nil)
	assert.ErrorIs(t, err, zk.ErrInvalidStatement)

	// a valid proof for a Blum modulus does not carry over to a prime
	blum, private := setup()
	proof, err := NewProof(rand.Reader, hash.New(), blum, private, nil)
	require.NoError(t, err)
	err = proof.Verify(hash.New(), public, nil)
	assert.True(t, zk.IsRejection(err), "unexpected error kind: %v", err)
}

func TestMod_InvalidWitness(t *testing.T) {
	public, private := setup()

	swapped := private
	swapped.Phi = test.ZK().Verifier.Phi()
	_, err := NewProof(rand.Reader, hash.New(), public, swapped, nil)
	assert.ErrorIs(t, err, zk.ErrInvalidStatement)

	other := private
	other.Q = test.ZK().Verifier.Q()
	_, err = NewProof(rand.Reader, hash.New(), public, other, nil)
	assert.ErrorIs(t, err, zk.ErrInvalidStatement)

	_, err = NewProof(rand.Reader, hash.New(), Public{}, private, nil)
	assert.ErrorIs(t, err, zk.ErrInvalidStatement)
}

func Test_set4thRoot(t *testing.T) {
	var pInt, qInt uint64 = 311, 331
	pHalf := new(saferith.Nat).SetUint64((pInt - 1) / 2)
	pMod := saferith.ModulusFromUint64(pInt)
	qHalf := new(saferith.Nat).SetUint64((qInt - 1) / 2)
	qMod := saferith.ModulusFromUint64(qInt)
	phi := new(saferith.Nat).SetUint64((pInt - 1) * (qInt - 1))
	n := saferith.ModulusFromUint64(pInt * qInt)

	y := new(saferith.Nat).SetUint64(502)
	w, err := sample.QNR(rand.Reader, n)
	require.NoError(t, err)

	a, b, x, ok := makeQuadraticResidue(y, w, pHalf, qHalf, n, pMod, qMod)
	require.True(t, ok)

	e := fourthRootExponent(phi)
	root := new(saferith.Nat).Exp(x, e, n)
	if b {
		y.ModMul(y, w, n)
	}
	if a {
		y.ModNeg(y, n)
	}

	assert.NotEqual(t, saferith.Choice(1), root.Eq(new(saferith.Nat).SetUint64(1)), "root cannot be 1")
	root.Exp(root, new(saferith.Nat).SetUint64(4), n)
	assert.Equal(t, saferith.Choice(1), root.Eq(y), "root^4 should be equal to y")
}

// 13 and 17 are both 1 mod 4, so 221 is not a Blum integer:
// 5 is a non-residue mod both factors, and 2 only mod 13.
func Test_makeQuadraticResidue_NotBlum(t *testing.T) {
	n := saferith.ModulusFromUint64(13 * 17)
	y := new(saferith.Nat).SetUint64(5)
	w := new(saferith.Nat).SetUint64(2)
	pHalf := new(saferith.Nat).SetUint64(6)
	qHalf := new(saferith.Nat).SetUint64(8)

	_, _, _, ok := makeQuadraticResidue(y, w, pHalf, qHalf, n, saferith.ModulusFromUint64(13), saferith.ModulusFromUint64(17))
	assert.False(t, ok)
}
