package zkfac

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/pkg/hash"
	"github.com/taurusgroup/paillier-zk/pkg/math/arith"
	"github.com/taurusgroup/paillier-zk/pkg/math/sample"
	"github.com/taurusgroup/paillier-zk/pkg/paillier"
	"github.com/taurusgroup/paillier-zk/pkg/pedersen"
	"github.com/taurusgroup/paillier-zk/pkg/zk"
)

// Relation labels the transcript and the errors of this package.
const Relation zk.Relation = "zkfac"

type Public struct {
	// N is the modulus whose factors are proven to be large.
	N *saferith.Modulus
	// Aux are the verifier's ring-Pedersen parameters, over a different modulus.
	Aux *pedersen.Parameters
}

type Private struct {
	P, Q *saferith.Nat
}

type Commitment struct {
	// P = sᵖ tᵘ
	P *saferith.Nat
	// Q = s^q tᵛ
	Q *saferith.Nat
	// A = sᵃ tˣ
	A *saferith.Nat
	// B = sᵇ tʸ
	B *saferith.Nat
	// T = Qᵃ tʳ
	T *saferith.Nat
}

type Proof struct {
	Comm  Commitment
	Sigma *saferith.Int
	Z1    *saferith.Int
	Z2    *saferith.Int
	W1    *saferith.Int
	W2    *saferith.Int
	V     *saferith.Int
}

func (public Public) validate() error {
	if public.N == nil || public.Aux == nil {
		return Relation.InvalidStatement("nil field", nil)
	}
	if err := paillier.ValidateN(public.N); err != nil {
		return Relation.InvalidStatement("modulus", err)
	}
	if err := public.Aux.Validate(); err != nil {
		return Relation.InvalidStatement("auxiliary parameters", err)
	}
	return nil
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil {
		return false
	}
	if p.Sigma == nil || p.Z1 == nil || p.Z2 == nil || p.W1 == nil || p.W2 == nil || p.V == nil {
		return false
	}
	if public.Aux == nil {
		return false
	}
	return arith.IsValidNatModN(public.Aux.N(), p.Comm.P, p.Comm.Q, p.Comm.A, p.Comm.B, p.Comm.T)
}

// NewProof proves that public.N = P⋅Q with both factors larger than 2ˡ.
func NewProof(rand io.Reader, hash *hash.Hash, public Public, private Private) (*Proof, error) {
	if err := public.validate(); err != nil {
		return nil, err
	}
	if private.P == nil || private.Q == nil {
		return nil, Relation.InvalidStatement("nil witness", nil)
	}
	if _, eq, _ := new(saferith.Nat).Mul(private.P, private.Q, -1).CmpMod(public.N); eq != 1 {
		return nil, Relation.InvalidStatement("factors do not multiply to N", nil)
	}

	N := public.Aux.NArith()

	var (
		alpha, beta, mu, nu, sigma, r, x, y *saferith.Int
		err                                 error
	)
	// Figure 28, point 1.
	samplers := []struct {
		name string
		out  **saferith.Int
		f    func(io.Reader) (*saferith.Int, error)
	}{
		{"alpha", &alpha, sample.IntervalLEpsRootN},
		{"beta", &beta, sample.IntervalLEpsRootN},
		{"mu", &mu, sample.IntervalLN},
		{"nu", &nu, sample.IntervalLN},
		{"sigma", &sigma, sample.IntervalLN2},
		{"r", &r, sample.IntervalLEpsN2},
		{"x", &x, sample.IntervalLEpsN},
		{"y", &y, sample.IntervalLEpsN},
	}
	for _, s := range samplers {
		if *s.out, err = s.f(rand); err != nil {
			return nil, Relation.SamplingFailed(s.name, err)
		}
	}

	pInt := new(saferith.Int).SetNat(private.P)
	qInt := new(saferith.Int).SetNat(private.Q)
	P := public.Aux.Commit(pInt, mu)
	Q := public.Aux.Commit(qInt, nu)
	A := public.Aux.Commit(alpha, x)
	B := public.Aux.Commit(beta, y)
	T := N.ExpI(Q, alpha)
	T.ModMul(T, N.ExpI(public.Aux.T(), r), N.Modulus)

	comm := Commitment{P, Q, A, B, T}

	// Figure 28, point 2:
	e, err := challenge(hash, public, comm)
	if err != nil {
		return nil, Relation.InvalidStatement("transcript", err)
	}

	// Figure 28, point 3:
	// the responses are (z1, z2, w1, w2, v).
	z1 := new(saferith.Int).Mul(e, pInt, -1)
	z1.Add(z1, alpha, -1)
	z2 := new(saferith.Int).Mul(e, qInt, -1)
	z2.Add(z2, beta, -1)
	w1 := new(saferith.Int).Mul(e, mu, -1)
	w1.Add(w1, x, -1)
	w2 := new(saferith.Int).Mul(e, nu, -1)
	w2.Add(w2, y, -1)
	// σ̂ = σ - νp
	sigmaHat := new(saferith.Int).Mul(nu, pInt, -1)
	sigmaHat = sigmaHat.Neg(1)
	sigmaHat.Add(sigmaHat, sigma, -1)
	v := new(saferith.Int).Mul(e, sigmaHat, -1)
	v.Add(v, r, -1)

	return &Proof{
		Comm:  comm,
		Sigma: sigma,
		Z1:    z1,
		Z2:    z2,
		W1:    w1,
		W2:    w2,
		V:     v,
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

	// an extra bit on the bound leaves room for the sum α + e⋅p.
	if !arith.IsInIntervalLEpsPlus1RootN(p.Z1) || !arith.IsInIntervalLEpsPlus1RootN(p.Z2) {
		return Relation.VerificationFailed("z range")
	}

	e, err := challenge(hash, public, p.Comm)
	if err != nil {
		return Relation.MalformedProof("transcript", err)
	}

	NHat := public.Aux.N()
	NArith := public.Aux.NArith()
	// R = sᴺ tˢⁱᵍᵐᵃ
	R := NArith.Exp(public.Aux.S(), public.N.Nat())
	R.ModMul(R, NArith.ExpI(public.Aux.T(), p.Sigma), NHat)

	lhs := public.Aux.Commit(p.Z1, p.W1)
	rhs := NArith.ExpI(p.Comm.P, e)
	rhs.ModMul(rhs, p.Comm.A, NHat)
	if lhs.Eq(rhs) != 1 {
		return Relation.VerificationFailed("commitment to p")
	}

	lhs = public.Aux.Commit(p.Z2, p.W2)
	rhs = NArith.ExpI(p.Comm.Q, e)
	rhs.ModMul(rhs, p.Comm.B, NHat)
	if lhs.Eq(rhs) != 1 {
		return Relation.VerificationFailed("commitment to q")
	}

	lhs = NArith.ExpI(p.Comm.Q, p.Z1)
	lhs.ModMul(lhs, NArith.ExpI(public.Aux.T(), p.V), NHat)
	rhs = NArith.ExpI(R, e)
	rhs.ModMul(rhs, p.Comm.T, NHat)
	if lhs.Eq(rhs) != 1 {
		return Relation.VerificationFailed("product equation")
	}

	return nil
}

func challenge(hash *hash.Hash, public Public, commitment Commitment) (*saferith.Int, error) {
	digest, err := Relation.Challenge(hash,
		[]interface{}{public.N, public.Aux},
		[]interface{}{commitment.P, commitment.Q, commitment.A, commitment.B, commitment.T},
	)
	if err != nil {
		return nil, err
	}
	// e ∈ ±2ᵉ, no curve is involved in this relation.
	return sample.IntervalEps(digest)
}
