package zkprm

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/internal/params"
	"github.com/taurusgroup/paillier-zk/pkg/hash"
	"github.com/taurusgroup/paillier-zk/pkg/math/arith"
	"github.com/taurusgroup/paillier-zk/pkg/math/sample"
	"github.com/taurusgroup/paillier-zk/pkg/pedersen"
	"github.com/taurusgroup/paillier-zk/pkg/pool"
	"github.com/taurusgroup/paillier-zk/pkg/zk"
)

// Relation labels the transcript and the errors of this package.
const Relation zk.Relation = "zkprm"

type (
	Public struct {
		Aux *pedersen.Parameters
	}
	Private struct {
		Lambda, Phi, P, Q *saferith.Nat
	}
)

type Proof struct {
	As, Zs []*saferith.Nat
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || public.Aux == nil {
		return false
	}
	if len(p.As) != params.PrmIterations || len(p.Zs) != params.PrmIterations {
		return false
	}
	if !arith.IsValidNatModN(public.Aux.N(), p.As...) {
		return false
	}
	if !arith.IsValidNatModN(public.Aux.N(), p.Zs...) {
		return false
	}
	return true
}

func (private Private) check(public Public) (*arith.Modulus, error) {
	if private.Lambda == nil || private.Phi == nil || private.P == nil || private.Q == nil {
		return nil, Relation.InvalidStatement("nil witness", nil)
	}
	n := arith.ModulusFromFactors(private.P, private.Q)
	if _, eq, _ := n.Nat().CmpMod(public.Aux.N()); eq != 1 {
		return nil, Relation.InvalidStatement("factors do not multiply to N", nil)
	}
	if _, _, lt := private.Lambda.CmpMod(saferith.ModulusFromNat(private.Phi)); lt != 1 {
		return nil, Relation.InvalidStatement("lambda is not reduced mod phi", nil)
	}
	if n.Exp(public.Aux.T(), private.Lambda).Eq(public.Aux.S()) != 1 {
		return nil, Relation.InvalidStatement("s is not t^lambda", nil)
	}
	return n, nil
}

// NewProof generates a proof that:
// s = t^lambda (mod N).
//
// The nonces aᵢ are read from rand in order, so a seeded source yields the same proof
// whatever pl is. Only the exponentiations are spread over pl, which may be nil.
func NewProof(rand io.Reader, hash *hash.Hash, public Public, private Private, pl *pool.Pool) (*Proof, error) {
	if public.Aux == nil {
		return nil, Relation.InvalidStatement("nil parameters", nil)
	}
	if err := public.Aux.Validate(); err != nil {
		return nil, Relation.InvalidStatement("parameters", err)
	}
	n, err := private.check(public)
	if err != nil {
		return nil, err
	}

	lambda := private.Lambda
	phi := saferith.ModulusFromNat(private.Phi)

	// aᵢ ∈ mod ϕ(N)
	as := make([]*saferith.Nat, params.PrmIterations)
	for i := range as {
		if as[i], err = sample.ModN(rand, phi); err != nil {
			return nil, Relation.SamplingFailed("a", err)
		}
	}

	// Aᵢ = tᵃ mod N
	commitments := pl.Parallelize(params.PrmIterations, func(i int) interface{} {
		return n.Exp(public.Aux.T(), as[i])
	})
	As := make([]*saferith.Nat, params.PrmIterations)
	for i := range commitments {
		As[i] = commitments[i].(*saferith.Nat)
	}

	es, err := challenge(hash, public, As)
	if err != nil {
		return nil, Relation.InvalidStatement("transcript", err)
	}

	Zs := make([]*saferith.Nat, params.PrmIterations)
	for i := 0; i < params.PrmIterations; i++ {
		z := as[i]
		// The challenge is public, so branching is ok
		if es[i] {
			z.ModAdd(z, lambda, phi)
		}
		Zs[i] = z
	}

	return &Proof{
		As: As,
		Zs: Zs,
	}, nil
}

// Verify checks every repetition of the proof, spread over pl, which may be nil.
// A single failing repetition rejects the proof.
func (p *Proof) Verify(hash *hash.Hash, public Public, pl *pool.Pool) error {
	if public.Aux == nil {
		return Relation.InvalidStatement("nil parameters", nil)
	}
	if err := public.Aux.Validate(); err != nil {
		return Relation.InvalidStatement("parameters", err)
	}
	if !p.IsValid(public) {
		return Relation.MalformedProof("shape", nil)
	}

	n, s, t := public.Aux.N(), public.Aux.S(), public.Aux.T()

	es, err := challenge(hash, public, p.As)
	if err != nil {
		return Relation.MalformedProof("transcript", err)
	}

	one := new(saferith.Nat).SetUint64(1)
	verifications := pl.Parallelize(params.PrmIterations, func(i int) interface{} {
		z := p.Zs[i]
		a := p.As[i]

		if a.Eq(one) == 1 {
			return false
		}

		lhs := new(saferith.Nat).Exp(t, z, n)
		rhs := new(saferith.Nat).SetNat(a)
		if es[i] {
			rhs.ModMul(rhs, s, n)
		}

		return lhs.Eq(rhs) == 1
	})
	for i := 0; i < len(verifications); i++ {
		if !verifications[i].(bool) {
			return Relation.VerificationFailed("discrete log")
		}
	}
	return nil
}

func challenge(hash *hash.Hash, public Public, A []*saferith.Nat) ([]bool, error) {
	commitment := make([]interface{}, len(A))
	for i, a := range A {
		commitment[i] = a
	}
	digest, err := Relation.Challenge(hash, []interface{}{public.Aux}, commitment)
	if err != nil {
		return nil, err
	}
	return sample.Bits(digest, params.PrmIterations)
}
