package pedersen

import (
	"fmt"
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/internal/cbor"
	"github.com/taurusgroup/paillier-zk/pkg/math/arith"
)

type Error string

const (
	ErrNilFields    Error = "contains nil field"
	ErrSEqualT      Error = "S cannot be equal to T"
	ErrNotValidModN Error = "S and T must be in [1,…,N-1] and coprime to N"
	ErrEvenN        Error = "N must be odd"
)

func (e Error) Error() string {
	return fmt.Sprintf("pedersen: %s", string(e))
}

// Parameters are ring-Pedersen parameters (N, s, t) with s = tˡ (mod N) for a secret λ.
type Parameters struct {
	n    *arith.Modulus
	s, t *saferith.Nat
}

// New returns a new set of Pedersen parameters.
// Assumes ValidateParameters(n, s, t) returns nil.
func New(n *arith.Modulus, s, t *saferith.Nat) *Parameters {
	return &Parameters{
		s: s,
		t: t,
		n: n,
	}
}

// ValidateParameters check n, s and t, and returns an error if any of the following is true:
// - n, s, or t is nil.
// - n is even.
// - s, t are not in [1, …,n-1].
// - s, t are not coprime to N.
// - s = t.
func ValidateParameters(n *saferith.Modulus, s, t *saferith.Nat) error {
	if n == nil || s == nil || t == nil {
		return ErrNilFields
	}
	if n.Nat().Byte(0)&1 != 1 {
		return ErrEvenN
	}
	// s, t ∈ ℤₙˣ
	if !arith.IsValidNatModN(n, s, t) {
		return ErrNotValidModN
	}
	// s ≡ t
	if _, eq, _ := s.Cmp(t); eq == 1 {
		return ErrSEqualT
	}
	return nil
}

// Validate runs ValidateParameters on p.
func (p *Parameters) Validate() error {
	if p == nil || p.n == nil {
		return ErrNilFields
	}
	return ValidateParameters(p.n.Modulus, p.s, p.t)
}

// N = p•q, p ≡ q ≡ 3 mod 4.
func (p Parameters) N() *saferith.Modulus { return p.n.Modulus }

// NArith returns N with its factorization when it is known.
func (p Parameters) NArith() *arith.Modulus { return p.n }

// S = tˡ mod N.
func (p Parameters) S() *saferith.Nat { return p.s }

// T = r² mod N.
func (p Parameters) T() *saferith.Nat { return p.t }

// Commit computes sˣ tʸ (mod N)
//
// x and y are taken as saferith.Int, because we want to keep these values in secret,
// in general. The commitment produced, on the other hand, hides their values,
// and can be safely shared.
func (p Parameters) Commit(x, y *saferith.Int) *saferith.Nat {
	sx := p.n.ExpI(p.s, x)
	ty := p.n.ExpI(p.t, y)

	result := sx.ModMul(sx, ty, p.n.Modulus)

	return result
}

// Verify returns true if sᵃ tᵇ ≡ S Tᵉ (mod N).
func (p Parameters) Verify(a, b, e *saferith.Int, S, T *saferith.Nat) bool {
	if a == nil || b == nil || S == nil || T == nil || e == nil {
		return false
	}
	nMod := p.n.Modulus
	if !arith.IsValidNatModN(nMod, S, T) {
		return false
	}

	sa := p.n.ExpI(p.s, a)         // sᵃ (mod N)
	tb := p.n.ExpI(p.t, b)         // tᵇ (mod N)
	lhs := sa.ModMul(sa, tb, nMod) // lhs = sᵃ⋅tᵇ (mod N)

	te := p.n.ExpI(T, e)          // Tᵉ (mod N)
	rhs := te.ModMul(te, S, nMod) // rhs = S⋅Tᵉ (mod N)
	return lhs.Eq(rhs) == 1
}

type parametersMarshal struct {
	N    *saferith.Modulus
	S, T *saferith.Nat
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Parameters) MarshalBinary() ([]byte, error) {
	if p == nil || p.n == nil {
		return nil, ErrNilFields
	}
	return cbor.Marshal(&parametersMarshal{
		N: p.n.Modulus,
		S: p.s,
		T: p.t,
	})
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The decoded parameters are validated.
func (p *Parameters) UnmarshalBinary(data []byte) error {
	var pm parametersMarshal
	if err := cbor.Unmarshal(data, &pm); err != nil {
		return fmt.Errorf("pedersen: %w", err)
	}
	if err := ValidateParameters(pm.N, pm.S, pm.T); err != nil {
		return err
	}
	*p = Parameters{
		n: arith.ModulusFromN(pm.N),
		s: pm.S,
		t: pm.T,
	}
	return nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
// It writes the same bytes as MarshalBinary.
func (p *Parameters) WriteTo(w io.Writer) (int64, error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	data, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (Parameters) Domain() string {
	return "Pedersen Parameters"
}
