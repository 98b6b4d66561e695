package zkenc

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/pkg/hash"
	"github.com/taurusgroup/paillier-zk/pkg/math/arith"
	"github.com/taurusgroup/paillier-zk/pkg/math/curve"
	"github.com/taurusgroup/paillier-zk/pkg/math/sample"
	"github.com/taurusgroup/paillier-zk/pkg/paillier"
	"github.com/taurusgroup/paillier-zk/pkg/pedersen"
	"github.com/taurusgroup/paillier-zk/pkg/zk"
)

// Relation labels the transcript and the errors of this package.
const Relation zk.Relation = "zkenc"

type (
	Public struct {
		// K = Enc₀(k;ρ)
		K *paillier.Ciphertext

		Prover *paillier.PublicKey
		Aux    *pedersen.Parameters
	}
	Private struct {
		// K = k ∈ ±2ˡ = Dec₀(K)
		// plaintext of K
		K *saferith.Int

		// Rho = ρ
		// nonce of K
		Rho *saferith.Nat
	}
)

type Commitment struct {
	// S = sᵏtᵘ
	S *saferith.Nat
	// A = Enc₀ (α, r)
	A *paillier.Ciphertext
	// C = sᵃtᵍ
	C *saferith.Nat
}

type Proof struct {
	*Commitment
	// Z₁ = α + e⋅k
	Z1 *saferith.Int
	// Z₂ = r ⋅ ρᵉ mod N₀
	Z2 *saferith.Nat
	// Z₃ = γ + e⋅μ
	Z3 *saferith.Int
}

func (public Public) validate() error {
	if public.K == nil || public.Prover == nil || public.Aux == nil {
		return Relation.InvalidStatement("nil field", nil)
	}
	if err := public.Prover.Validate(); err != nil {
		return Relation.InvalidStatement("prover key", err)
	}
	if err := public.Aux.Validate(); err != nil {
		return Relation.InvalidStatement("auxiliary parameters", err)
	}
	if !public.Prover.ValidateCiphertexts(public.K) {
		return Relation.InvalidStatement("ciphertext K", nil)
	}
	return nil
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.Commitment == nil {
		return false
	}
	if p.Z1 == nil || p.Z3 == nil {
		return false
	}
	if public.Prover == nil || public.Aux == nil {
		return false
	}
	if !public.Prover.ValidateCiphertexts(p.A) {
		return false
	}
	if !arith.IsValidNatModN(public.Prover.N(), p.Z2) {
		return false
	}
	if !arith.IsValidNatModN(public.Aux.N(), p.S, p.C) {
		return false
	}
	return true
}

// NewProof proves that public.K encrypts a plaintext k with |k| < 2ˡ.
//
// The range is signed: any k in ]-2ˡ, 2ˡ[ is accepted.
func NewProof(group curve.Curve, rand io.Reader, hash *hash.Hash, public Public, private Private) (*Proof, error) {
	if err := public.validate(); err != nil {
		return nil, err
	}
	if private.K == nil || private.Rho == nil {
		return nil, Relation.InvalidStatement("nil witness", nil)
	}
	if !arith.IsInIntervalL(private.K) {
		return nil, Relation.InvalidStatement("plaintext out of range", nil)
	}
	N := public.Prover.N()
	NModulus := public.Prover.Modulus()
	if !arith.IsValidNatModN(N, private.Rho) {
		return nil, Relation.InvalidStatement("nonce", nil)
	}
	if !public.Prover.EncWithNonce(private.K, private.Rho).Equal(public.K) {
		return nil, Relation.InvalidStatement("witness does not open K", nil)
	}

	alpha, err := sample.IntervalLEps(rand)
	if err != nil {
		return nil, Relation.SamplingFailed("alpha", err)
	}
	r, err := sample.UnitModN(rand, N)
	if err != nil {
		return nil, Relation.SamplingFailed("r", err)
	}
	mu, err := sample.IntervalLN(rand)
	if err != nil {
		return nil, Relation.SamplingFailed("mu", err)
	}
	gamma, err := sample.IntervalLEpsN(rand)
	if err != nil {
		return nil, Relation.SamplingFailed("gamma", err)
	}

	commitment := &Commitment{
		S: public.Aux.Commit(private.K, mu),
		A: public.Prover.EncWithNonce(alpha, r),
		C: public.Aux.Commit(alpha, gamma),
	}

	e, err := challenge(hash, group, public, commitment)
	if err != nil {
		return nil, Relation.InvalidStatement("transcript", err)
	}

	// z₁ = α + e⋅k
	z1 := new(saferith.Int).Mul(e, private.K, -1)
	z1.Add(z1, alpha, -1)
	// z₂ = r⋅ρᵉ mod N₀
	z2 := NModulus.ExpI(private.Rho, e)
	z2.ModMul(z2, r, N)
	// z₃ = γ + e⋅μ
	z3 := new(saferith.Int).Mul(e, mu, -1)
	z3.Add(z3, gamma, -1)

	return &Proof{
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
		Z3:         z3,
	}, nil
}

// Verify checks the proof against public, using a clone of hash.
func (p *Proof) Verify(group curve.Curve, hash *hash.Hash, public Public) error {
	if err := public.validate(); err != nil {
		return err
	}
	if !p.IsValid(public) {
		return Relation.MalformedProof("shape", nil)
	}

	prover := public.Prover

	if !arith.IsInIntervalLEps(p.Z1) {
		return Relation.VerificationFailed("z1 range")
	}

	e, err := challenge(hash, group, public, p.Commitment)
	if err != nil {
		return Relation.MalformedProof("transcript", err)
	}

	if !public.Aux.Verify(p.Z1, p.Z3, e, p.C, p.S) {
		return Relation.VerificationFailed("pedersen commitment")
	}

	{
		// lhs = Enc(z₁;z₂)
		lhs := prover.EncWithNonce(p.Z1, p.Z2)

		// rhs = (e ⊙ K) ⊕ A
		rhs := public.K.Clone().Mul(prover, e).Add(prover, p.A)
		if !lhs.Equal(rhs) {
			return Relation.VerificationFailed("paillier equation")
		}
	}

	return nil
}

func challenge(hash *hash.Hash, group curve.Curve, public Public, commitment *Commitment) (e *saferith.Int, err error) {
	digest, err := Relation.Challenge(hash,
		[]interface{}{public.Aux, public.Prover, public.K},
		[]interface{}{commitment.S, commitment.A, commitment.C},
	)
	if err != nil {
		return nil, err
	}
	return sample.IntervalScalar(digest, group)
}
