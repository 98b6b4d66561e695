package zklogstar

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
const Relation zk.Relation = "zklogstar"

type Public struct {
	// C = Enc₀(x;ρ)
	C *paillier.Ciphertext

	// X = x⋅G
	X curve.Point

	// G is the base point of the curve.
	// If G = nil, the default base point is used.
	G curve.Point

	Prover *paillier.PublicKey
	Aux    *pedersen.Parameters
}

type Private struct {
	// X is the plaintext of C and the discrete log of X.
	X *saferith.Int

	// Rho = ρ is nonce used to encrypt C.
	Rho *saferith.Nat
}

type Commitment struct {
	// S = sˣ tᵘ (mod N)
	S *saferith.Nat
	// A = Enc₀(alpha; r)
	A *paillier.Ciphertext
	// Y = α⋅G
	Y curve.Point
	// D = sᵃ tᵍ (mod N)
	D *saferith.Nat
}

type Proof struct {
	group curve.Curve
	*Commitment
	// Z1 = α + e x
	Z1 *saferith.Int
	// Z2 = r ρᵉ mod N
	Z2 *saferith.Nat
	// Z3 = γ + e μ
	Z3 *saferith.Int
}

func (public Public) base(group curve.Curve) curve.Point {
	if public.G == nil {
		return group.NewBasePoint()
	}
	return public.G
}

func (public Public) validate() error {
	if public.C == nil || public.X == nil || public.Prover == nil || public.Aux == nil {
		return Relation.InvalidStatement("nil field", nil)
	}
	if err := public.Prover.Validate(); err != nil {
		return Relation.InvalidStatement("prover key", err)
	}
	if err := public.Aux.Validate(); err != nil {
		return Relation.InvalidStatement("auxiliary parameters", err)
	}
	if !public.Prover.ValidateCiphertexts(public.C) {
		return Relation.InvalidStatement("ciphertext C", nil)
	}
	return nil
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.group == nil || p.Commitment == nil {
		return false
	}
	if p.Y == nil || p.Y.IsIdentity() {
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
	if !arith.IsValidNatModN(public.Aux.N(), p.S, p.D) {
		return false
	}
	return true
}

// NewProof proves that public.C encrypts the discrete log x of public.X, with |x| < 2ˡ.
//
// x is signed, so negative witnesses in ]-2ˡ, 0[ are proven like positive ones.
func NewProof(group curve.Curve, rand io.Reader, hash *hash.Hash, public Public, private Private) (*Proof, error) {
	if err := public.validate(); err != nil {
		return nil, err
	}
	if private.X == nil || private.Rho == nil {
		return nil, Relation.InvalidStatement("nil witness", nil)
	}
	if !arith.IsInIntervalL(private.X) {
		return nil, Relation.InvalidStatement("plaintext out of range", nil)
	}
	N := public.Prover.N()
	NModulus := public.Prover.Modulus()
	if !arith.IsValidNatModN(N, private.Rho) {
		return nil, Relation.InvalidStatement("nonce", nil)
	}
	if !public.Prover.EncWithNonce(private.X, private.Rho).Equal(public.C) {
		return nil, Relation.InvalidStatement("witness does not open C", nil)
	}
	G := public.base(group)
	if !curve.ScalarFromInt(group, private.X).Act(G).Equal(public.X) {
		return nil, Relation.InvalidStatement("witness is not the discrete log of X", nil)
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
		A: public.Prover.EncWithNonce(alpha, r),
		Y: curve.ScalarFromInt(group, alpha).Act(G),
		S: public.Aux.Commit(private.X, mu),
		D: public.Aux.Commit(alpha, gamma),
	}

	e, err := challenge(hash, group, public, commitment)
	if err != nil {
		return nil, Relation.InvalidStatement("transcript", err)
	}

	// z1 = α + e x,
	z1 := new(saferith.Int).Mul(e, private.X, -1)
	z1.Add(z1, alpha, -1)
	// z2 = r ρᵉ mod N,
	z2 := NModulus.ExpI(private.Rho, e)
	z2.ModMul(z2, r, N)
	// z3 = γ + e μ,
	z3 := new(saferith.Int).Mul(e, mu, -1)
	z3.Add(z3, gamma, -1)

	return &Proof{
		group:      group,
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
		Z3:         z3,
	}, nil
}

// Verify checks the proof against public, using a clone of hash.
func (p *Proof) Verify(hash *hash.Hash, public Public) error {
	if err := public.validate(); err != nil {
		return err
	}
	if !p.IsValid(public) {
		return Relation.MalformedProof("shape", nil)
	}

	if !arith.IsInIntervalLEps(p.Z1) {
		return Relation.VerificationFailed("z1 range")
	}

	e, err := challenge(hash, p.group, public, p.Commitment)
	if err != nil {
		return Relation.MalformedProof("transcript", err)
	}

	if !public.Aux.Verify(p.Z1, p.Z3, e, p.D, p.S) {
		return Relation.VerificationFailed("pedersen commitment")
	}

	prover := public.Prover
	{
		// lhs = Enc(z₁;z₂)
		lhs := prover.EncWithNonce(p.Z1, p.Z2)

		// rhs = (e ⊙ C) ⊕ A
		rhs := public.C.Clone().Mul(prover, e).Add(prover, p.A)
		if !lhs.Equal(rhs) {
			return Relation.VerificationFailed("paillier equation")
		}
	}

	{
		// lhs = [z₁]G
		lhs := curve.ScalarFromInt(p.group, p.Z1).Act(public.base(p.group))

		// rhs = Y + [e]X
		rhs := curve.ScalarFromInt(p.group, e).Act(public.X)
		rhs = rhs.Add(p.Y)

		if !lhs.Equal(rhs) {
			return Relation.VerificationFailed("group equation")
		}
	}

	return nil
}

func challenge(hash *hash.Hash, group curve.Curve, public Public, commitment *Commitment) (e *saferith.Int, err error) {
	digest, err := Relation.Challenge(hash,
		[]interface{}{public.Aux, public.Prover, public.C, public.X, public.base(group)},
		[]interface{}{commitment.S, commitment.A, commitment.Y, commitment.D},
	)
	if err != nil {
		return nil, err
	}
	return sample.IntervalScalar(digest, group)
}

// Empty returns a proof whose group elements can be decoded into.
func Empty(group curve.Curve) *Proof {
	return &Proof{
		group:      group,
		Commitment: &Commitment{Y: group.NewPoint()},
	}
}
