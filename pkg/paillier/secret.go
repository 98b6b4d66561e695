package paillier

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/internal/params"
	"github.com/taurusgroup/paillier-zk/pkg/math/arith"
	"github.com/taurusgroup/paillier-zk/pkg/math/sample"
	"github.com/taurusgroup/paillier-zk/pkg/pedersen"
	"github.com/taurusgroup/paillier-zk/pkg/pool"
)

var (
	ErrPrimeBadLength = errors.New("prime factor is not the right length")
	ErrNotBlum        = errors.New("prime factor is not equivalent to 3 (mod 4)")
	ErrNotSafePrime   = errors.New("supposed prime factor is not a safe prime")
	ErrPrimeNil       = errors.New("prime is nil")
)

// SecretKey holds the factorization of a Paillier modulus.
//
// Provers of zkmod, zkfac and zkprm take their witnesses from here, and the
// CRT-backed moduli it builds make their exponentiations cheaper.
type SecretKey struct {
	*PublicKey
	p, q *saferith.Nat
	// ϕ(N) = (p-1)(q-1)
	phi *saferith.Nat
	// ϕ⁻¹ mod N
	phiInv *saferith.Nat
}

// P returns the first factor of N.
func (sk *SecretKey) P() *saferith.Nat { return sk.p }

// Q returns the second factor of N.
func (sk *SecretKey) Q() *saferith.Nat { return sk.q }

// Phi returns ϕ(N) = (P-1)(Q-1).
func (sk *SecretKey) Phi() *saferith.Nat { return sk.phi }

// NewSecretKey samples a pair of safe Blum primes and builds a key from them.
// Sampling is spread over pl, which may be nil.
//
// It fails when rand fails, or when the prime search exhausts its budget.
func NewSecretKey(rand io.Reader, pl *pool.Pool) (*SecretKey, error) {
	p, q, err := sample.Paillier(rand, pl)
	if err != nil {
		return nil, fmt.Errorf("paillier: generate primes: %w", err)
	}
	return NewSecretKeyFromPrimes(p, q), nil
}

// NewSecretKeyFromPrimes builds a key from P and Q, which the caller guarantees to be prime.
func NewSecretKeyFromPrimes(P, Q *saferith.Nat) *SecretKey {
	one := new(saferith.Nat).SetUint64(1)
	phi := new(saferith.Nat).Mul(
		new(saferith.Nat).Sub(P, one, -1),
		new(saferith.Nat).Sub(Q, one, -1),
		-1)

	n := arith.ModulusFromFactors(P, Q)
	nSquared := arith.ModulusFromFactors(
		new(saferith.Nat).Mul(P, P, -1),
		new(saferith.Nat).Mul(Q, Q, -1))

	nNat := n.Nat()
	nPlusOne := new(saferith.Nat).Add(nNat, one, -1)
	// N is public, so its length may leak
	nPlusOne.Resize(nPlusOne.TrueLen())

	return &SecretKey{
		PublicKey: &PublicKey{
			n:        n,
			nSquared: nSquared,
			nNat:     nNat,
			nPlusOne: nPlusOne,
		},
		p:      P,
		q:      Q,
		phi:    phi,
		phiInv: new(saferith.Nat).ModInverse(phi, n.Modulus),
	}
}

// Dec returns the plaintext of ct as a symmetric residue in ±(N-1)/2.
//
// Ciphertexts outside Z*_{N²} are refused.
func (sk *SecretKey) Dec(ct *Ciphertext) (*saferith.Int, error) {
	if !sk.ValidateCiphertexts(ct) {
		return nil, errors.New("paillier: failed to decrypt invalid ciphertext")
	}
	n := sk.n.Modulus

	// L(c^ϕ mod N²) = (c^ϕ - 1)/N
	u := sk.nSquared.Exp(ct.c, sk.phi)
	u.Sub(u, new(saferith.Nat).SetUint64(1), -1)
	u.Div(u, n, -1)
	// m = L(c^ϕ)⋅ϕ⁻¹ mod N
	u.ModMul(u, sk.phiInv, n)

	return new(saferith.Int).SetModSymmetric(u, n), nil
}

// DecWithRandomness also recovers the nonce ρ such that ct = Enc(m; ρ).
func (sk *SecretKey) DecWithRandomness(ct *Ciphertext) (*saferith.Int, *saferith.Nat, error) {
	m, err := sk.Dec(ct)
	if err != nil {
		return nil, nil, err
	}

	// ρᴺ = c⋅(N+1)⁻ᵐ mod N
	rhoN := sk.n.ExpI(sk.nPlusOne, new(saferith.Int).SetInt(m).Neg(1))
	rhoN.ModMul(rhoN, ct.c, sk.n.Modulus)

	// ρ = (ρᴺ)^(N⁻¹ mod ϕ)
	nInv := new(saferith.Nat).ModInverse(sk.nNat, saferith.ModulusFromNat(sk.phi))
	return m, sk.n.Exp(rhoN, nInv), nil
}

// GeneratePedersen samples ring-Pedersen parameters (N, s, t) over this key's modulus.
// It also returns λ with s = tˡ, the witness of a zkprm proof.
func (sk *SecretKey) GeneratePedersen(rand io.Reader) (*pedersen.Parameters, *saferith.Nat, error) {
	s, t, lambda, err := sample.Pedersen(rand, sk.phi, sk.n.Modulus)
	if err != nil {
		return nil, nil, err
	}
	return pedersen.New(sk.n, s, t), lambda, nil
}

// ValidatePrime checks that p is a safe Blum prime of params.BitsBlumPrime bits.
func ValidatePrime(p *saferith.Nat) error {
	if p == nil {
		return ErrPrimeNil
	}
	// the expected length is public
	if bits := p.TrueLen(); bits != params.BitsBlumPrime {
		return fmt.Errorf("invalid prime size: have: %d, need %d: %w", bits, params.BitsBlumPrime, ErrPrimeBadLength)
	}
	if p.Byte(0)&0b11 != 3 {
		return ErrNotBlum
	}
	if !arith.IsProbablyPrime(new(saferith.Nat).Rsh(p, 1, -1)) {
		return ErrNotSafePrime
	}
	return nil
}
