package paillier

import (
	"errors"
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/internal/cbor"
	"github.com/taurusgroup/paillier-zk/internal/params"
	"github.com/taurusgroup/paillier-zk/pkg/math/arith"
	"github.com/taurusgroup/paillier-zk/pkg/math/sample"
)

var (
	ErrPaillierLength = errors.New("wrong number bit length of Paillier modulus N")
	ErrPaillierEven   = errors.New("modulus N is even")
	ErrPaillierNil    = errors.New("modulus N is nil")
)

// PublicKey is a Paillier public key. It is represented by a modulus N.
type PublicKey struct {
	// n = p⋅q
	n *arith.Modulus
	// nSquared = n²
	nSquared *arith.Modulus

	// These values are cached out of convenience, and performance
	nNat *saferith.Nat
	// nPlusOne = n + 1
	nPlusOne *saferith.Nat
}

// N is the public modulus making up this key.
func (pk *PublicKey) N() *saferith.Modulus {
	return pk.n.Modulus
}

// NSquared returns N².
func (pk *PublicKey) NSquared() *saferith.Modulus {
	return pk.nSquared.Modulus
}

// Modulus returns an arith.Modulus for N which may allow for accelerated exponentiation when this
// public key was generated from a secret key.
func (pk *PublicKey) Modulus() *arith.Modulus {
	return pk.n
}

// ModulusSquared returns an arith.Modulus for N² which may allow for accelerated exponentiation when this
// public key was generated from a secret key.
func (pk *PublicKey) ModulusSquared() *arith.Modulus {
	return pk.nSquared
}

// NewPublicKey returns an initialized paillier.PublicKey and caches N, N² and (N+1).
func NewPublicKey(n *saferith.Modulus) *PublicKey {
	oneNat := new(saferith.Nat).SetUint64(1)
	nNat := n.Nat()
	nSquared := saferith.ModulusFromNat(new(saferith.Nat).Mul(nNat, nNat, -1))
	nPlusOne := new(saferith.Nat).Add(nNat, oneNat, -1)
	// Tightening is fine, since n is public
	nPlusOne.Resize(nPlusOne.TrueLen())

	return &PublicKey{
		n:        arith.ModulusFromN(n),
		nSquared: arith.ModulusFromN(nSquared),
		nNat:     nNat,
		nPlusOne: nPlusOne,
	}
}

// ValidateN performs basic checks to make sure the modulus is valid:
// - log₂(n) = params.BitsPaillier.
// - n is odd.
func ValidateN(n *saferith.Modulus) error {
	if n == nil {
		return ErrPaillierNil
	}
	// log₂(N) = BitsPaillier
	if bits := n.BitLen(); bits != params.BitsPaillier {
		return fmt.Errorf("have: %d, need %d: %w", bits, params.BitsPaillier, ErrPaillierLength)
	}
	if n.Nat().Byte(0)&1 != 1 {
		return ErrPaillierEven
	}
	return nil
}

// Validate runs ValidateN on the key's modulus.
func (pk *PublicKey) Validate() error {
	if pk == nil || pk.n == nil {
		return ErrPaillierNil
	}
	return ValidateN(pk.n.Modulus)
}

// Enc returns the encryption of m under the public key pk, with a nonce sampled from rand.
// The nonce used to encrypt is returned.
//
// ct = (1+N)ᵐρᴺ (mod N²).
func (pk *PublicKey) Enc(rand io.Reader, m *saferith.Int) (*Ciphertext, *saferith.Nat, error) {
	nonce, err := sample.UnitModN(rand, pk.n.Modulus)
	if err != nil {
		return nil, nil, err
	}
	return pk.EncWithNonce(m, nonce), nonce, nil
}

// EncWithNonce returns the encryption of m under the public key pk, with the given nonce.
//
// ct = (1+N)ᵐρᴺ (mod N²).
//
// (1+N)ᵐ = 1 + (m mod N)⋅N (mod N²), so any m is accepted; decryption returns
// the representative of m in ±(N-1)/2.
func (pk *PublicKey) EncWithNonce(m *saferith.Int, nonce *saferith.Nat) *Ciphertext {
	nSquared := pk.nSquared.Modulus
	// (1+N)ᵐ = 1 + m⋅N mod N²
	c := new(saferith.Nat).Mul(m.Mod(pk.n.Modulus), pk.nNat, nSquared.BitLen())
	c.ModAdd(c, new(saferith.Nat).SetUint64(1), nSquared)
	// ρᴺ mod N²
	rhoN := pk.nSquared.Exp(nonce, pk.nNat)
	// (N+1)ᵐ ρᴺ
	c.ModMul(c, rhoN, nSquared)

	return &Ciphertext{c: c}
}

// Equal returns true if pk ≡ other.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.nNat.Eq(other.nNat) == 1
}

// ValidateCiphertexts checks if all ciphertexts are in the correct range and coprime to N²
// ct ∈ [1, …, N²-1] AND GCD(ct,N²) = 1.
func (pk *PublicKey) ValidateCiphertexts(cts ...*Ciphertext) bool {
	for _, ct := range cts {
		if ct == nil || ct.c == nil {
			return false
		}
		if _, _, lt := ct.c.CmpMod(pk.nSquared.Modulus); lt != 1 {
			return false
		}
		if ct.c.IsUnit(pk.nSquared.Modulus) != 1 {
			return false
		}
	}
	return true
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	if pk == nil || pk.n == nil {
		return nil, ErrPaillierNil
	}
	return cbor.Marshal(pk.n.Modulus)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The decoded modulus is checked with ValidateN.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	n := new(saferith.Modulus)
	if err := cbor.Unmarshal(data, n); err != nil {
		return fmt.Errorf("paillier: %w", err)
	}
	if err := ValidateN(n); err != nil {
		return fmt.Errorf("paillier: %w", err)
	}
	*pk = *NewPublicKey(n)
	return nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
// It writes the same bytes as MarshalBinary.
func (pk *PublicKey) WriteTo(w io.Writer) (int64, error) {
	if pk == nil {
		return 0, io.ErrUnexpectedEOF
	}
	data, err := pk.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*PublicKey) Domain() string {
	return "Paillier PublicKey"
}
