package paillier

import (
	"errors"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/internal/params"
)

// Ciphertext represents an integer of the form
//
//	ct = (1+N)ᵐρᴺ (mod N²),
//
// representing the encryption of m ∈ ℤₙˣ with randomness ρ.
type Ciphertext struct {
	c *saferith.Nat
}

// Add sets ct to the homomorphic sum ct ⊕ ct₂.
// ct ← ct•ct₂ (mod N²).
func (ct *Ciphertext) Add(pk *PublicKey, ct2 *Ciphertext) *Ciphertext {
	if ct2 == nil {
		return ct
	}

	ct.c.ModMul(ct.c, ct2.c, pk.nSquared.Modulus)

	return ct
}

// Mul sets ct to the homomorphic multiplication of k ⊙ ct.
// ct ← ctᵏ (mod N²).
func (ct *Ciphertext) Mul(pk *PublicKey, k *saferith.Int) *Ciphertext {
	if k == nil {
		return ct
	}

	ct.c = pk.nSquared.ExpI(ct.c, k)

	return ct
}

// Equal check whether ct ≡ ctₐ (mod N²).
func (ct *Ciphertext) Equal(ctA *Ciphertext) bool {
	return ct.c.Eq(ctA.c) == 1
}

// Clone returns a deep copy of ct.
func (ct Ciphertext) Clone() *Ciphertext {
	c := new(saferith.Nat)
	c.SetNat(ct.c)
	return &Ciphertext{c: c}
}

// Randomize multiplies the ciphertext's nonce by a newly given one.
// ct ← ct⋅nonceᴺ (mod N²).
func (ct *Ciphertext) Randomize(pk *PublicKey, nonce *saferith.Nat) *Ciphertext {
	// c = c*r^N
	tmp := pk.nSquared.Exp(nonce, pk.nNat)
	ct.c.ModMul(ct.c, tmp, pk.nSquared.Modulus)
	return ct
}

// MarshalBinary implements encoding.BinaryMarshaler.
// Ciphertexts are always encoded on params.BytesCiphertext bytes.
func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	if ct == nil || ct.c == nil {
		return nil, errors.New("paillier: nil ciphertext")
	}
	if ct.c.TrueLen() > 8*params.BytesCiphertext {
		return nil, errors.New("paillier: ciphertext too long")
	}
	buf := make([]byte, params.BytesCiphertext)
	new(saferith.Nat).SetNat(ct.c).Resize(8 * params.BytesCiphertext).FillBytes(buf)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (ct *Ciphertext) UnmarshalBinary(data []byte) error {
	if len(data) != params.BytesCiphertext {
		return errors.New("paillier: ciphertext has wrong length")
	}
	ct.c = new(saferith.Nat).SetBytes(data)
	return nil
}

// Nat returns the underlying integer. It must not be modified.
func (ct *Ciphertext) Nat() *saferith.Nat {
	return ct.c
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (ct *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	if ct == nil || ct.c == nil {
		return 0, io.ErrUnexpectedEOF
	}
	buf, err := ct.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (*Ciphertext) Domain() string {
	return "Paillier Ciphertext"
}
