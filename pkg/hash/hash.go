package hash

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"io"
	"math/big"
	"reflect"

	"github.com/taurusgroup/paillier-zk/internal/params"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/cryptobyte"
)

// DigestLengthBytes is the length of the output of Sum.
const DigestLengthBytes = params.SecBytes * 2 // 64

// label is written to every fresh transcript before any caller data.
const label = "PAILLIER-ZK-BLAKE3"

// Hash is the Fiat-Shamir transcript used to derive challenges.
//
// Internally, this is a wrapper around blake3, whose extendable output lets
// challenges of any size be read from the same state.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash struct where the internal hash function is initialized with a fixed label,
// and then absorbs initialData in order.
func New(initialData ...WriterToWithDomain) *Hash {
	hash := &Hash{h: blake3.New()}
	_, _ = hash.h.WriteString(label)
	for _, d := range initialData {
		_ = hash.WriteAny(d)
	}
	return hash
}

// NewWithContext returns a Hash bound to a context tag, such as a session or key identifier.
//
// Proofs created with one tag do not verify with a Hash created with another.
// A nil tag is absorbed as an empty one, so it still differs from New().
func NewWithContext(tag []byte) *Hash {
	if tag == nil {
		tag = []byte{}
	}
	return New(BytesWithDomain{
		TheDomain: "Context",
		Bytes:     tag,
	})
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	// the blake3 digest is an infinite stream and never fails
	_, _ = io.ReadFull(hash.Digest(), out)
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - *big.Int
//   - hash.WriterToWithDomain
//   - encoding.BinaryMarshaler (saferith.Nat, saferith.Int, saferith.Modulus, curve points, ...)
//
// This function will apply its own domain separation for the first two types.
// WriterToWithDomain already suggests which domain to use, and this function respects it.
// Marshalers are separated by their type name.
func (hash *Hash) WriteAny(data ...interface{}) error {
	for _, d := range data {
		var toBeWritten BytesWithDomain
		switch t := d.(type) {
		case []byte:
			if t == nil {
				return errors.New("hash.WriteAny: nil []byte")
			}
			toBeWritten = BytesWithDomain{"[]byte", t}
		case *big.Int:
			if t == nil {
				return errors.New("hash.WriteAny: write *big.Int: nil")
			}
			b, _ := t.GobEncode()
			toBeWritten = BytesWithDomain{"big.Int", b}
		case WriterToWithDomain:
			if isNil(t) {
				return fmt.Errorf("hash.WriteAny: %s: nil", reflect.TypeOf(t))
			}
			var buf bytes.Buffer
			if _, err := t.WriteTo(&buf); err != nil {
				return fmt.Errorf("hash.WriteAny: %s: %w", reflect.TypeOf(t), err)
			}
			toBeWritten = BytesWithDomain{t.Domain(), buf.Bytes()}
		case encoding.BinaryMarshaler:
			name := reflect.TypeOf(t).String()
			if isNil(t) {
				return fmt.Errorf("hash.WriteAny: %s: nil", name)
			}
			b, err := t.MarshalBinary()
			if err != nil {
				return fmt.Errorf("hash.WriteAny: %s: %w", name, err)
			}
			toBeWritten = BytesWithDomain{name, b}
		case nil:
			return errors.New("hash.WriteAny: nil value")
		default:
			return fmt.Errorf("hash.WriteAny: invalid type %T provided as input", d)
		}
		if err := hash.writeBytesWithDomain(toBeWritten); err != nil {
			return err
		}
	}
	return nil
}

// writeBytesWithDomain writes out `(<domain_size><domain><data_size><data>)`,
// so that each domain separated piece of data is distinguished from others.
// Sizes are 8 byte big-endian integers.
func (hash *Hash) writeBytesWithDomain(toBeWritten BytesWithDomain) error {
	b := cryptobyte.NewBuilder(make([]byte, 0, 2+16+len(toBeWritten.TheDomain)+len(toBeWritten.Bytes)))
	b.AddUint8('(')
	b.AddUint64(uint64(len(toBeWritten.TheDomain)))
	b.AddBytes([]byte(toBeWritten.TheDomain))
	b.AddUint64(uint64(len(toBeWritten.Bytes)))
	b.AddBytes(toBeWritten.Bytes)
	b.AddUint8(')')
	out, err := b.Bytes()
	if err != nil {
		return fmt.Errorf("hash.WriteAny: %w", err)
	}
	_, _ = hash.h.Write(out)
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// Fork clones this hash, and then writes some data.
func (hash *Hash) Fork(data ...interface{}) (*Hash, error) {
	newHash := hash.Clone()
	if err := newHash.WriteAny(data...); err != nil {
		return nil, err
	}
	return newHash, nil
}

func isNil(v interface{}) bool {
	r := reflect.ValueOf(v)
	switch r.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return r.IsNil()
	}
	return false
}
