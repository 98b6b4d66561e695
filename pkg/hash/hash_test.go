package hash

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_WriteAny(t *testing.T) {
	var err error

	testFunc := func(vs ...interface{}) error {
		h := New()
		for _, v := range vs {
			err = h.WriteAny(v)
			if err != nil {
				return err
			}
		}
		return nil
	}
	b := big.NewInt(35)
	i := new(saferith.Int).SetBig(b, b.BitLen())
	n := new(saferith.Nat).SetBig(b, b.BitLen())
	m := saferith.ModulusFromBytes(b.Bytes())

	assert.NoError(t, testFunc(i, n, m))
	assert.NoError(t, testFunc([]byte{1, 4, 6}))
	assert.NoError(t, testFunc(BytesWithDomain{"test", []byte{1}}))

	var nilNat *saferith.Nat
	assert.Error(t, testFunc(nilNat))
	assert.Error(t, testFunc(nil))
	assert.Error(t, testFunc([]byte(nil)))
	assert.Error(t, testFunc(BytesWithDomain{"test", nil}))
	assert.Error(t, testFunc(3))
}

func TestHash_WriteAny_Collision(t *testing.T) {
	var err error

	testFunc := func(vs ...interface{}) ([]byte, error) {
		h := New()
		for _, v := range vs {
			err = h.WriteAny(v)
			if err != nil {
				return nil, err
			}
		}
		return h.Sum(), nil
	}
	b1 := []byte("1)(big.Int\x02*data_added*")
	b2 := []byte("3")
	n2 := new(big.Int)
	n2.SetString(hex.EncodeToString(b2), 16)
	h1, err := testFunc(b1, n2)
	assert.NoError(t, err)

	b1 = []byte("1")
	b2 = []byte("*data_added*)(big.Int\x023")
	n2 = new(big.Int)
	n2.SetString(hex.EncodeToString(b2), 16)
	h2, err := testFunc(b1, n2)
	assert.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHash_Context(t *testing.T) {
	a := NewWithContext([]byte("session A"))
	b := NewWithContext([]byte("session B"))
	assert.NotEqual(t, a.Sum(), b.Sum())
	assert.Equal(t, a.Sum(), NewWithContext([]byte("session A")).Sum())
	assert.NotEqual(t, New().Sum(), a.Sum())

	empty := NewWithContext(nil)
	assert.NotEqual(t, New().Sum(), empty.Sum())
	assert.Equal(t, NewWithContext([]byte{}).Sum(), empty.Sum())
}

func TestHash_Fork(t *testing.T) {
	h := New()
	before := h.Sum()

	f1, err := h.Fork([]byte{1})
	require.NoError(t, err)
	f2, err := h.Fork([]byte{1})
	require.NoError(t, err)

	assert.Equal(t, before, h.Sum(), "forking must not change the parent")
	assert.Equal(t, f1.Sum(), f2.Sum())
	assert.NotEqual(t, before, f1.Sum())

	_, err = h.Fork(nil)
	assert.Error(t, err)
}

func TestHash_Clone(t *testing.T) {
	h := New()
	c := h.Clone()
	require.NoError(t, c.WriteAny([]byte{1, 2, 3}))
	assert.NotEqual(t, h.Sum(), c.Sum())
	require.NoError(t, h.WriteAny([]byte{1, 2, 3}))
	assert.Equal(t, h.Sum(), c.Sum())
}
