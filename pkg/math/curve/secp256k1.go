package curve

import (
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var secp256k1OrderNat, _ = new(saferith.Nat).SetHex("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141")
var secp256k1Order = saferith.ModulusFromNat(secp256k1OrderNat)

// Secp256k1 is the curve used by Bitcoin and Ethereum ECDSA.
type Secp256k1 struct{}

func (Secp256k1) NewPoint() Point {
	return new(Secp256k1Point)
}

func (Secp256k1) NewBasePoint() Point {
	out := new(Secp256k1Point)
	secp256k1.ScalarBaseMultNonConst(new(secp256k1.ModNScalar).SetInt(1), &out.value)
	return out
}

func (Secp256k1) NewScalar() Scalar {
	return new(Secp256k1Scalar)
}

func (Secp256k1) Name() string {
	return "secp256k1"
}

func (Secp256k1) ScalarBits() int {
	return 256
}

func (Secp256k1) Order() *saferith.Modulus {
	return secp256k1Order
}

type Secp256k1Scalar struct {
	value secp256k1.ModNScalar
}

func secp256k1CastScalar(generic Scalar) *Secp256k1Scalar {
	out, ok := generic.(*Secp256k1Scalar)
	if !ok {
		panic(fmt.Sprintf("failed to convert to secp256k1Scalar: %v", generic))
	}
	return out
}

func (*Secp256k1Scalar) Curve() Curve {
	return Secp256k1{}
}

func (s *Secp256k1Scalar) MarshalBinary() ([]byte, error) {
	data := s.value.Bytes()
	return data[:], nil
}

func (s *Secp256k1Scalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("invalid length for secp256k1 scalar: %d", len(data))
	}
	var exactData [32]byte
	copy(exactData[:], data)
	if s.value.SetBytes(&exactData) != 0 {
		return errors.New("invalid bytes for secp256k1 scalar")
	}
	return nil
}

func (s *Secp256k1Scalar) Add(that Scalar) Scalar {
	other := secp256k1CastScalar(that)
	s.value.Add(&other.value)
	return s
}

func (s *Secp256k1Scalar) Mul(that Scalar) Scalar {
	other := secp256k1CastScalar(that)
	s.value.Mul(&other.value)
	return s
}

func (s *Secp256k1Scalar) Negate() Scalar {
	s.value.Negate()
	return s
}

func (s *Secp256k1Scalar) Equal(that Scalar) bool {
	other := secp256k1CastScalar(that)
	return s.value.Equals(&other.value)
}

func (s *Secp256k1Scalar) IsZero() bool {
	return s.value.IsZero()
}

func (s *Secp256k1Scalar) Set(that Scalar) Scalar {
	other := secp256k1CastScalar(that)
	s.value.Set(&other.value)
	return s
}

func (s *Secp256k1Scalar) SetNat(x *saferith.Nat) Scalar {
	reduced := new(saferith.Nat).Mod(x, secp256k1Order)
	s.value.SetByteSlice(reduced.Bytes())
	return s
}

func (s *Secp256k1Scalar) Act(that Point) Point {
	other := secp256k1CastPoint(that)
	out := new(Secp256k1Point)
	secp256k1.ScalarMultNonConst(&s.value, &other.value, &out.value)
	return out
}

func (s *Secp256k1Scalar) ActOnBase() Point {
	out := new(Secp256k1Point)
	secp256k1.ScalarBaseMultNonConst(&s.value, &out.value)
	return out
}

// Secp256k1Point is stored in Jacobian coordinates; the zero value is the identity.
type Secp256k1Point struct {
	value secp256k1.JacobianPoint
}

func secp256k1CastPoint(generic Point) *Secp256k1Point {
	out, ok := generic.(*Secp256k1Point)
	if !ok {
		panic(fmt.Sprintf("failed to convert to secp256k1Point: %v", generic))
	}
	return out
}

func (*Secp256k1Point) Curve() Curve {
	return Secp256k1{}
}

// affine returns a normalized copy of p.
func (p *Secp256k1Point) affine() secp256k1.JacobianPoint {
	var out secp256k1.JacobianPoint
	out.Set(&p.value)
	out.ToAffine()
	return out
}

// MarshalBinary returns the 33 byte compressed form of the point.
// The identity is encoded as 33 zero bytes.
func (p *Secp256k1Point) MarshalBinary() ([]byte, error) {
	out := make([]byte, 33)
	if p.IsIdentity() {
		return out, nil
	}
	a := p.affine()
	out[0] = secp256k1.PubKeyFormatCompressedEven
	if a.Y.IsOdd() {
		out[0] = secp256k1.PubKeyFormatCompressedOdd
	}
	data := a.X.Bytes()
	copy(out[1:], data[:])
	return out, nil
}

func (p *Secp256k1Point) UnmarshalBinary(data []byte) error {
	if len(data) != 33 {
		return fmt.Errorf("invalid length for secp256k1Point: %d", len(data))
	}
	if isZeroBytes(data) {
		p.value = secp256k1.JacobianPoint{}
		return nil
	}
	if data[0] != secp256k1.PubKeyFormatCompressedEven && data[0] != secp256k1.PubKeyFormatCompressedOdd {
		return fmt.Errorf("secp256k1Point.UnmarshalBinary: invalid prefix %x", data[0])
	}
	var x, y secp256k1.FieldVal
	if x.SetByteSlice(data[1:]) {
		return errors.New("secp256k1Point.UnmarshalBinary: x coordinate out of range")
	}
	if !secp256k1.DecompressY(&x, data[0] == secp256k1.PubKeyFormatCompressedOdd, &y) {
		return errors.New("secp256k1Point.UnmarshalBinary: x coordinate not on curve")
	}
	p.value.X.Set(&x)
	p.value.Y.Set(&y)
	p.value.Z.SetInt(1)
	return nil
}

func (p *Secp256k1Point) Add(that Point) Point {
	other := secp256k1CastPoint(that)
	out := new(Secp256k1Point)
	secp256k1.AddNonConst(&p.value, &other.value, &out.value)
	return out
}

func (p *Secp256k1Point) Negate() Point {
	out := new(Secp256k1Point)
	out.value = p.affine()
	out.value.Y.Negate(1).Normalize()
	return out
}

func (p *Secp256k1Point) Set(that Point) Point {
	other := secp256k1CastPoint(that)
	p.value.Set(&other.value)
	return p
}

func (p *Secp256k1Point) Equal(that Point) bool {
	other := secp256k1CastPoint(that)
	if p.IsIdentity() || other.IsIdentity() {
		return p.IsIdentity() && other.IsIdentity()
	}
	a, b := p.affine(), other.affine()
	return a.X.Equals(&b.X) && a.Y.Equals(&b.Y)
}

func (p *Secp256k1Point) IsIdentity() bool {
	return p.value.Z.IsZero() || (p.value.X.IsZero() && p.value.Y.IsZero())
}

func isZeroBytes(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
