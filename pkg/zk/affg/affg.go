package zkaffg

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
const Relation zk.Relation = "zkaffg"

type (
	Public struct {
		// Kv = C, a ciphertext encrypted with Nᵥ
		Kv *paillier.Ciphertext

		// Dv = (x ⨀ Kv) ⨁ Encᵥ(y;s)
		Dv *paillier.Ciphertext

		// Fp = Y = Encₚ(y;r)
		Fp *paillier.Ciphertext

		// Xp = gˣ
		Xp curve.Point

		// Prover = Nₚ
		// Verifier = Nᵥ
		Prover, Verifier *paillier.PublicKey
		Aux              *pedersen.Parameters
	}
	Private struct {
		// X ∈ ± 2ˡ
		X *saferith.Int
		// Y ∈ ± 2ˡº
		Y *saferith.Int
		// S = s
		// (Nonce for Dv)
		S *saferith.Nat
		// R = r
		// (Nonce for Fp)
		R *saferith.Nat
	}
)

type Commitment struct {
	// A = (α ⊙ Kv) ⊕ Encᵥ(β, ρ)
	A *paillier.Ciphertext
	// Bx = gᵃ
	Bx curve.Point
	// By = Encₚ(β, ρy)
	By *paillier.Ciphertext
	// E = sᵃ tᵍ
	E *saferith.Nat
	// S = sˣ tᵐ
	S *saferith.Nat
	// F = sᵇ tᵈ
	F *saferith.Nat
	// T = sʸ tᵘ
	T *saferith.Nat
}

type Proof struct {
	group curve.Curve
	*Commitment
	// Z1 = Z₁ = α + e⋅x
	Z1 *saferith.Int
	// Z2 = Z₂ = β + e⋅y
	Z2 *saferith.Int
	// Z3 = Z₃ = γ + e⋅m
	Z3 *saferith.Int
	// Z4 = Z₄ = δ + e⋅μ
	Z4 *saferith.Int
	// W = w = ρ⋅sᵉ mod N₀
	W *saferith.Nat
	// Wy = wy = ρy⋅rᵉ mod N₁
	Wy *saferith.Nat
}

func (public Public) validate() error {
	if public.Kv == nil || public.Dv == nil || public.Fp == nil || public.Xp == nil {
		return Relation.InvalidStatement("nil field", nil)
	}
	if public.Prover == nil || public.Verifier == nil || public.Aux == nil {
		return Relation.InvalidStatement("nil key", nil)
	}
	if err := public.Prover.Validate(); err != nil {
		return Relation.InvalidStatement("prover key", err)
	}
	if err := public.Verifier.Validate(); err != nil {
		return Relation.InvalidStatement("verifier key", err)
	}
	if err := public.Aux.Validate(); err != nil {
		return Relation.InvalidStatement("auxiliary parameters", err)
	}
	if !public.Verifier.ValidateCiphertexts(public.Kv, public.Dv) {
		return Relation.InvalidStatement("verifier ciphertexts", nil)
	}
	if !public.Prover.ValidateCiphertexts(public.Fp) {
		return Relation.InvalidStatement("prover ciphertext", nil)
	}
	return nil
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.group == nil || p.Commitment == nil {
		return false
	}
	if p.Z1 == nil || p.Z2 == nil || p.Z3 == nil || p.Z4 == nil {
		return false
	}
	if public.Prover == nil || public.Verifier == nil || public.Aux == nil {
		return false
	}
	if !public.Verifier.ValidateCiphertexts(p.A) {
		return false
	}
	if !public.Prover.ValidateCiphertexts(p.By) {
		return false
	}
	if !arith.IsValidNatModN(public.Prover.N(), p.Wy) {
		return false
	}
	if !arith.IsValidNatModN(public.Verifier.N(), p.W) {
		return false
	}
	if !arith.IsValidNatModN(public.Aux.N(), p.E, p.S, p.F, p.T) {
		return false
	}
	if p.Bx == nil || p.Bx.IsIdentity() {
		return false
	}
	return true
}

func (private Private) check(group curve.Curve, public Public) error {
	if private.X == nil || private.Y == nil || private.S == nil || private.R == nil {
		return Relation.InvalidStatement("nil witness", nil)
	}
	if !arith.IsInIntervalL(private.X) {
		return Relation.InvalidStatement("x out of range", nil)
	}
	if !arith.IsInIntervalLPrime(private.Y) {
		return Relation.InvalidStatement("y out of range", nil)
	}
	if !arith.IsValidNatModN(public.Verifier.N(), private.S) {
		return Relation.InvalidStatement("nonce s", nil)
	}
	if !arith.IsValidNatModN(public.Prover.N(), private.R) {
		return Relation.InvalidStatement("nonce r", nil)
	}
	verifier := public.Verifier
	D := public.Kv.Clone().Mul(verifier, private.X).Add(verifier, verifier.EncWithNonce(private.Y, private.S))
	if !D.Equal(public.Dv) {
		return Relation.InvalidStatement("witness does not open Dv", nil)
	}
	if !public.Prover.EncWithNonce(private.Y, private.R).Equal(public.Fp) {
		return Relation.InvalidStatement("witness does not open Fp", nil)
	}
	if !curve.ScalarFromInt(group, private.X).ActOnBase().Equal(public.Xp) {
		return Relation.InvalidStatement("witness is not the discrete log of Xp", nil)
	}
	return nil
}

// NewProof proves that public.Dv was obtained from public.Kv by multiplying with the
// discrete log x of public.Xp and adding the plaintext y of public.Fp.
//
// Both witnesses are signed: |x| < 2ˡ and |y| < 2ˡ'.
func NewProof(group curve.Curve, rand io.Reader, hash *hash.Hash, public Public, private Private) (*Proof, error) {
	if err := public.validate(); err != nil {
		return nil, err
	}
	if err := private.check(group, public); err != nil {
		return nil, err
	}

	N0 := public.Verifier.N()
	N1 := public.Prover.N()
	N0Modulus := public.Verifier.Modulus()
	N1Modulus := public.Prover.Modulus()

	verifier := public.Verifier
	prover := public.Prover

	var (
		alpha, beta, gamma, m, delta, mu *saferith.Int
		r, ry                            *saferith.Nat
		err                              error
	)
	if alpha, err = sample.IntervalLEps(rand); err != nil {
		return nil, Relation.SamplingFailed("alpha", err)
	}
	if beta, err = sample.IntervalLPrimeEps(rand); err != nil {
		return nil, Relation.SamplingFailed("beta", err)
	}
	if r, err = sample.UnitModN(rand, N0); err != nil {
		return nil, Relation.SamplingFailed("r", err)
	}
	if ry, err = sample.UnitModN(rand, N1); err != nil {
		return nil, Relation.SamplingFailed("ry", err)
	}
	if gamma, err = sample.IntervalLEpsN(rand); err != nil {
		return nil, Relation.SamplingFailed("gamma", err)
	}
	if m, err = sample.IntervalLN(rand); err != nil {
		return nil, Relation.SamplingFailed("m", err)
	}
	if delta, err = sample.IntervalLEpsN(rand); err != nil {
		return nil, Relation.SamplingFailed("delta", err)
	}
	if mu, err = sample.IntervalLN(rand); err != nil {
		return nil, Relation.SamplingFailed("mu", err)
	}

	// cAlpha = Kvᵃ mod N₀ = α ⊙ Kv
	cAlpha := public.Kv.Clone().Mul(verifier, alpha)
	// A = Enc₀(β,r) ⊕ (α ⊙ Kv)
	A := verifier.EncWithNonce(beta, r).Add(verifier, cAlpha)

	commitment := &Commitment{
		A:  A,
		Bx: curve.ScalarFromInt(group, alpha).ActOnBase(),
		By: prover.EncWithNonce(beta, ry),
		E:  public.Aux.Commit(alpha, gamma),
		S:  public.Aux.Commit(private.X, m),
		F:  public.Aux.Commit(beta, delta),
		T:  public.Aux.Commit(private.Y, mu),
	}

	e, err := challenge(hash, group, public, commitment)
	if err != nil {
		return nil, Relation.InvalidStatement("transcript", err)
	}

	// e•x+α
	z1 := new(saferith.Int).Mul(e, private.X, -1)
	z1.Add(z1, alpha, -1)
	// e•y+β
	z2 := new(saferith.Int).Mul(e, private.Y, -1)
	z2.Add(z2, beta, -1)
	// e•m+γ
	z3 := new(saferith.Int).Mul(e, m, -1)
	z3.Add(z3, gamma, -1)
	// e•μ+δ
	z4 := new(saferith.Int).Mul(e, mu, -1)
	z4.Add(z4, delta, -1)
	// (sᵉ mod N₀)•r mod N₀
	w := N0Modulus.ExpI(private.S, e)
	w.ModMul(w, r, N0)
	// (rᵉ mod N₁)•ry mod N₁
	wY := N1Modulus.ExpI(private.R, e)
	wY.ModMul(wY, ry, N1)

	return &Proof{
		group:      group,
		Commitment: commitment,
		Z1:         z1,
		Z2:         z2,
		Z3:         z3,
		Z4:         z4,
		W:          w,
		Wy:         wY,
	}, nil
}

// Verify checks the proof against public, using a clone of hash.
// The Paillier and curve equations share the single challenge.
func (p *Proof) Verify(hash *hash.Hash, public Public) error {
	if err := public.validate(); err != nil {
		return err
	}
	if !p.IsValid(public) {
		return Relation.MalformedProof("shape", nil)
	}

	verifier := public.Verifier
	prover := public.Prover

	if !arith.IsInIntervalLEps(p.Z1) {
		return Relation.VerificationFailed("z1 range")
	}
	if !arith.IsInIntervalLPrimeEps(p.Z2) {
		return Relation.VerificationFailed("z2 range")
	}

	e, err := challenge(hash, p.group, public, p.Commitment)
	if err != nil {
		return Relation.MalformedProof("transcript", err)
	}

	if !public.Aux.Verify(p.Z1, p.Z3, e, p.E, p.S) {
		return Relation.VerificationFailed("pedersen commitment to x")
	}

	if !public.Aux.Verify(p.Z2, p.Z4, e, p.F, p.T) {
		return Relation.VerificationFailed("pedersen commitment to y")
	}

	{
		// tmp = z₁ ⊙ Kv
		// lhs = Enc₀(z₂;w) ⊕ z₁ ⊙ Kv
		tmp := public.Kv.Clone().Mul(verifier, p.Z1)
		lhs := verifier.EncWithNonce(p.Z2, p.W).Add(verifier, tmp)

		// rhs = (e ⊙ Dv) ⊕ A
		rhs := public.Dv.Clone().Mul(verifier, e).Add(verifier, p.A)

		if !lhs.Equal(rhs) {
			return Relation.VerificationFailed("affine equation")
		}
	}

	{
		// lhs = [z₁]G
		lhs := curve.ScalarFromInt(p.group, p.Z1).ActOnBase()

		// rhsPt = Bₓ + [e]Xp
		rhs := curve.ScalarFromInt(p.group, e).Act(public.Xp)
		rhs = rhs.Add(p.Bx)
		if !lhs.Equal(rhs) {
			return Relation.VerificationFailed("group equation")
		}
	}

	{
		// lhs = Enc₁(z₂; wy)
		lhs := prover.EncWithNonce(p.Z2, p.Wy)

		// rhs = (e ⊙ Fp) ⊕ By
		rhs := public.Fp.Clone().Mul(prover, e).Add(prover, p.By)

		if !lhs.Equal(rhs) {
			return Relation.VerificationFailed("encryption equation")
		}
	}

	return nil
}

func challenge(hash *hash.Hash, group curve.Curve, public Public, commitment *Commitment) (e *saferith.Int, err error) {
	digest, err := Relation.Challenge(hash,
		[]interface{}{public.Aux, public.Prover, public.Verifier,
			public.Kv, public.Dv, public.Fp, public.Xp},
		[]interface{}{commitment.A, commitment.Bx, commitment.By,
			commitment.E, commitment.S, commitment.F, commitment.T},
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
		Commitment: &Commitment{Bx: group.NewPoint()},
	}
}
