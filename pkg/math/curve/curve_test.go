package curve

import (
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type marshalTester struct {
	S Scalar
	P Point
}

func TestMarshal(t *testing.T) {
	group := Secp256k1{}
	s := marshalTester{
		S: group.NewScalar().SetNat(new(saferith.Nat).SetUint64(0xED)),
		P: group.NewBasePoint(),
	}
	data, err := cbor.Marshal(s)
	require.NoError(t, err)
	s2 := marshalTester{
		S: group.NewScalar(),
		P: group.NewPoint(),
	}
	err = cbor.Unmarshal(data, &s2)
	require.NoError(t, err)
	assert.True(t, s.S.Equal(s2.S))
	assert.True(t, s.P.Equal(s2.P))
}

func TestPoint_Identity(t *testing.T) {
	group := Secp256k1{}
	identity := group.NewPoint()
	assert.True(t, identity.IsIdentity())

	g := group.NewBasePoint()
	assert.False(t, g.IsIdentity())
	assert.True(t, g.Add(g.Negate()).IsIdentity())
	assert.True(t, g.Add(identity).Equal(g))

	data, err := identity.MarshalBinary()
	require.NoError(t, err)
	decoded := group.NewPoint()
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.True(t, decoded.IsIdentity())

	zero := group.NewScalar()
	assert.True(t, zero.ActOnBase().IsIdentity())
}

func TestPoint_Unmarshal_Invalid(t *testing.T) {
	p := Secp256k1{}.NewPoint()
	assert.Error(t, p.UnmarshalBinary([]byte{2, 3}))

	bad := make([]byte, 33)
	bad[0] = 5
	bad[1] = 1
	assert.Error(t, p.UnmarshalBinary(bad))
}

func TestScalar_Act(t *testing.T) {
	group := Secp256k1{}
	a := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(7))
	b := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(11))
	sum := group.NewScalar().Set(a).Add(b)

	lhs := sum.ActOnBase()
	rhs := a.ActOnBase().Add(b.Act(group.NewBasePoint()))
	assert.True(t, lhs.Equal(rhs))

	x := new(saferith.Int).SetUint64(5)
	x.Neg(1)
	minusFive := ScalarFromInt(group, x)
	five := group.NewScalar().SetNat(new(saferith.Nat).SetUint64(5))
	assert.True(t, minusFive.Add(five).IsZero())
}
