package curve

import (
	"encoding"

	"github.com/cronokirby/saferith"
)

// Curve is the group in which the discrete-log side of a relation is proved.
type Curve interface {
	NewPoint() Point
	NewBasePoint() Point
	NewScalar() Scalar
	Name() string
	ScalarBits() int
	Order() *saferith.Modulus
}

// Scalar is an element of ℤ_q for the group order q.
// Arithmetic methods modify the receiver and return it.
type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Scalar) Scalar
	Mul(Scalar) Scalar
	Negate() Scalar
	Equal(Scalar) bool
	IsZero() bool
	Set(Scalar) Scalar
	SetNat(*saferith.Nat) Scalar
	Act(Point) Point
	ActOnBase() Point
}

// Point is a group element. Arithmetic methods return a new Point.
type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Point) Point
	Negate() Point
	Set(Point) Point
	Equal(Point) bool
	IsIdentity() bool
}

// ScalarFromInt reduces x modulo the group order.
func ScalarFromInt(group Curve, x *saferith.Int) Scalar {
	return group.NewScalar().SetNat(x.Mod(group.Order()))
}
