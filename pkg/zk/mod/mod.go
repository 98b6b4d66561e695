package zkmod

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/internal/params"
	"github.com/taurusgroup/paillier-zk/pkg/hash"
	"github.com/taurusgroup/paillier-zk/pkg/math/arith"
	"github.com/taurusgroup/paillier-zk/pkg/math/sample"
	"github.com/taurusgroup/paillier-zk/pkg/pool"
	"github.com/taurusgroup/paillier-zk/pkg/zk"
)

// Relation labels the transcript and the errors of this package.
const Relation zk.Relation = "zkmod"

type Public struct {
	// N = p*q
	N *saferith.Modulus
}

type Private struct {
	// P, Q primes such that
	// P, Q ≡ 3 mod 4
	P, Q *saferith.Nat
	// Phi = ϕ(n) = (p-1)(q-1)
	Phi *saferith.Nat
}

type Response struct {
	// A, B s.t. y' = (-1)ᵃ wᵇ y
	A, B bool
	// X = y' ^ {1/4}
	X *saferith.Nat
	// Z = y^{N⁻¹ mod ϕ(N)}
	Z *saferith.Nat
}

type Proof struct {
	W         *saferith.Nat
	Responses []Response
}

// isQRModPQ checks that y is a quadratic residue mod both p and q.
//
// p and q should be prime numbers.
//
// pHalf should be (p - 1) / 2
//
// qHalf should be (q - 1) / 2.
func isQRmodPQ(y, pHalf, qHalf *saferith.Nat, p, q *saferith.Modulus) saferith.Choice {
	oneNat := new(saferith.Nat).SetUint64(1).Resize(1)

	test := new(saferith.Nat)
	test.Exp(y, pHalf, p)
	pOk := test.Eq(oneNat)

	test.Exp(y, qHalf, q)
	qOk := test.Eq(oneNat)

	return pOk & qOk
}

// fourthRootExponent returns the exponent e such that (qrᵉ)⁴ = qr mod n, given that:
//   - n = p•q
//   - phi = (p-1)(q-1)
//   - p,q = 3 (mod 4)  =>  n = 1 (mod 4)
//   - Jacobi(qr, p) == Jacobi(qr, q) == 1
//
// Set e to
//
//	     ϕ + 4
//	e' = ------,   e = (e')²
//	       8
func fourthRootExponent(phi *saferith.Nat) *saferith.Nat {
	e := new(saferith.Nat).SetUint64(4)
	e.Add(e, phi, -1)
	e.Rsh(e, 3, -1)
	e.ModMul(e, e, saferith.ModulusFromNat(phi))
	return e
}

// makeQuadraticResidue return a, b and y' such that:
//
//	y' = (-1)ᵃ • wᵇ • y
//
// is a QR.
//
// With:
//   - n=pq is a blum integer
//   - w is a quadratic non residue in Zn
//   - y is an element that may or may not be a QR
//   - pHalf = (p - 1) / 2
//   - qHalf = (p - 1) / 2
//
// ok is false if none of the four candidates is a QR, which only happens when n is not a Blum integer.
// Leaking the return values is fine, but not the input values related to the factorization of N.
func makeQuadraticResidue(y, w, pHalf, qHalf *saferith.Nat, n, p, q *saferith.Modulus) (a, b bool, out *saferith.Nat, ok bool) {
	out = new(saferith.Nat).Mod(y, n)

	if isQRmodPQ(out, pHalf, qHalf, p, q) == 1 {
		return false, false, out, true
	}

	// multiply by -1
	out.ModNeg(out, n)
	if isQRmodPQ(out, pHalf, qHalf, p, q) == 1 {
		return true, false, out, true
	}

	// multiply by w again
	out.ModMul(out, w, n)
	if isQRmodPQ(out, pHalf, qHalf, p, q) == 1 {
		return true, true, out, true
	}

	// multiply by -1 again
	out.ModNeg(out, n)
	if isQRmodPQ(out, pHalf, qHalf, p, q) == 1 {
		return false, true, out, true
	}
	return false, false, nil, false
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || p.W == nil || public.N == nil {
		return false
	}
	if len(p.Responses) != params.ModIterations {
		return false
	}
	if !arith.IsValidNatModN(public.N, p.W) {
		return false
	}
	for _, r := range p.Responses {
		if !arith.IsValidNatModN(public.N, r.X, r.Z) {
			return false
		}
	}
	return true
}

// isBlumCandidate reports whether n is odd and composite. Both are required for a Paillier-Blum modulus,
// and the remaining conditions are what the proof itself establishes.
func isBlumCandidate(n *saferith.Modulus) bool {
	nNat := n.Nat()
	if nNat.Byte(0)&1 != 1 {
		return false
	}
	return !arith.IsProbablyPrime(nNat)
}

func (private Private) check(public Public) error {
	p, q, phi := private.P, private.Q, private.Phi
	if p == nil || q == nil || phi == nil {
		return Relation.InvalidStatement("nil witness", nil)
	}
	if p.Byte(0)&0b11 != 3 || q.Byte(0)&0b11 != 3 {
		return Relation.InvalidStatement("factor is not 3 mod 4", nil)
	}
	if p.Eq(q) == 1 {
		return Relation.InvalidStatement("factors are equal", nil)
	}
	n := new(saferith.Nat).Mul(p, q, -1)
	if _, eq, _ := n.CmpMod(public.N); eq != 1 {
		return Relation.InvalidStatement("factors do not multiply to N", nil)
	}
	one := new(saferith.Nat).SetUint64(1)
	pMinus1 := new(saferith.Nat).Sub(p, one, -1)
	qMinus1 := new(saferith.Nat).Sub(q, one, -1)
	if new(saferith.Nat).Mul(pMinus1, qMinus1, -1).Eq(phi) != 1 {
		return Relation.InvalidStatement("phi", nil)
	}
	return nil
}

// NewProof generates a proof that:
//   - n = pq
//   - p and q are odd primes
//   - p, q == 3 (mod n)
//
// With:
//   - W s.t. (w/N) = -1
//   - x = y' ^ {1/4}
//   - z = y^{N⁻¹ mod ϕ(N)}
//   - a, b s.t. y' = (-1)ᵃ wᵇ y
//   - R = [(xᵢ aᵢ, bᵢ), zᵢ] for i = 1, …, m
//
// The repetitions are spread over pl, which may be nil.
func NewProof(rand io.Reader, hash *hash.Hash, public Public, private Private, pl *pool.Pool) (*Proof, error) {
	if public.N == nil {
		return nil, Relation.InvalidStatement("nil modulus", nil)
	}
	if !isBlumCandidate(public.N) {
		return nil, Relation.InvalidStatement("modulus is even or prime", nil)
	}
	if err := private.check(public); err != nil {
		return nil, err
	}

	n, p, q, phi := public.N, private.P, private.Q, private.Phi
	nModulus := arith.ModulusFromFactors(p, q)
	pHalf := new(saferith.Nat).Rsh(p, 1, -1)
	pMod := saferith.ModulusFromNat(p)
	qHalf := new(saferith.Nat).Rsh(q, 1, -1)
	qMod := saferith.ModulusFromNat(q)
	phiMod := saferith.ModulusFromNat(phi)
	// W can be leaked so no need to make this sampling return a nat.
	w, err := sample.QNR(rand, n)
	if err != nil {
		return nil, Relation.SamplingFailed("w", err)
	}

	nInverse := new(saferith.Nat).ModInverse(n.Nat(), phiMod)

	e := fourthRootExponent(phi)

	ys, err := challenge(hash, n, w)
	if err != nil {
		return nil, Relation.InvalidStatement("transcript", err)
	}

	rs := make([]Response, params.ModIterations)
	found := pl.Parallelize(params.ModIterations, func(i int) interface{} {
		y := ys[i]

		// Z = y^{n⁻¹ (mod n)}
		z := nModulus.Exp(y, nInverse)

		a, b, yPrime, ok := makeQuadraticResidue(y, w, pHalf, qHalf, n, pMod, qMod)
		if !ok {
			return false
		}
		// X = (y')¹/4
		x := nModulus.Exp(yPrime, e)

		rs[i] = Response{
			A: a,
			B: b,
			X: x,
			Z: z,
		}

		return true
	})
	for _, ok := range found {
		if !ok.(bool) {
			return nil, Relation.SamplingFailed("no quadratic residue among the candidates", nil)
		}
	}

	return &Proof{
		W:         w,
		Responses: rs,
	}, nil
}

func (r *Response) Verify(n *saferith.Modulus, w, y *saferith.Nat) bool {
	nNat := n.Nat()

	// lhs = zⁿ mod n
	lhs := new(saferith.Nat).Exp(r.Z, nNat, n)
	if lhs.Eq(y) != 1 {
		return false
	}

	// lhs = x⁴ (mod n)
	lhs.ModMul(r.X, r.X, n)
	lhs.ModMul(lhs, lhs, n)

	// rhs = y' = (-1)ᵃ • wᵇ • y
	rhs := new(saferith.Nat).Mod(y, n)
	if r.A {
		rhs.ModNeg(rhs, n)
	}
	if r.B {
		rhs.ModMul(rhs, w, n)
	}

	return lhs.Eq(rhs) == 1
}

// Verify checks every repetition of the proof, spread over pl, which may be nil.
// A single failing repetition rejects the proof.
func (p *Proof) Verify(hash *hash.Hash, public Public, pl *pool.Pool) error {
	if public.N == nil {
		return Relation.InvalidStatement("nil modulus", nil)
	}
	if !p.IsValid(public) {
		return Relation.MalformedProof("shape", nil)
	}
	n := public.N
	// check if n is odd and prime
	if !isBlumCandidate(n) {
		return Relation.VerificationFailed("modulus is even or prime")
	}

	if arith.Jacobi(p.W, n) != -1 {
		return Relation.VerificationFailed("w has jacobi symbol 1")
	}

	// get [yᵢ] <- ℤₙ
	ys, err := challenge(hash, n, p.W)
	if err != nil {
		return Relation.MalformedProof("transcript", err)
	}
	verifications := pl.Parallelize(params.ModIterations, func(i int) interface{} {
		return p.Responses[i].Verify(n, p.W, ys[i])
	})
	for i := 0; i < len(verifications); i++ {
		if !verifications[i].(bool) {
			return Relation.VerificationFailed("fourth root")
		}
	}
	return nil
}

func challenge(hash *hash.Hash, n *saferith.Modulus, w *saferith.Nat) (es []*saferith.Nat, err error) {
	digest, err := Relation.Challenge(hash, []interface{}{n}, []interface{}{w})
	if err != nil {
		return nil, err
	}
	es = make([]*saferith.Nat, params.ModIterations)
	for i := range es {
		if es[i], err = sample.ModN(digest, n); err != nil {
			return nil, err
		}
	}
	return es, nil
}
