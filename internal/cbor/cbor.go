// Package cbor wraps github.com/fxamacker/cbor with the options used for every
// encoding produced by this module.
//
//  1. CBOR is encoded using Core Deterministic Encoding (RFC 8949, section 4.2.1),
//     so a value has exactly one encoding.
//  2. The decoder rejects duplicate map keys, unknown fields and indefinite lengths,
//     so a decoded value re-encodes to the bytes it came from.
package cbor

import (
	"github.com/fxamacker/cbor/v2"
)

const MaxArrayElements = 1024
const MaxMapPairs = 64

// RawMessage is a raw encoded CBOR value.
type RawMessage = cbor.RawMessage

var (
	encOptions = cbor.EncOptions{
		InfConvert:    cbor.InfConvertFloat16,
		IndefLength:   cbor.IndefLengthForbidden,
		NaNConvert:    cbor.NaNConvert7e00,
		ShortestFloat: cbor.ShortestFloat16,
		Sort:          cbor.SortCoreDeterministic,

		TagsMd: cbor.TagsForbidden,
	}

	decOptions = cbor.DecOptions{
		IndefLength: cbor.IndefLengthForbidden,

		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: MaxArrayElements,
		MaxMapPairs:      MaxMapPairs,

		TagsMd:  cbor.TagsForbidden,
		TimeTag: cbor.DecTagIgnored,

		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}

	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = encOptions.EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = decOptions.DecMode(); err != nil {
		panic(err)
	}
}

// Marshal encodes src into a CBOR-encoded byte slice.
func Marshal(src interface{}) ([]byte, error) {
	return encMode.Marshal(src)
}

// Unmarshal decodes CBOR in data into dst.
func Unmarshal(data []byte, dst interface{}) error {
	return decMode.Unmarshal(data, dst)
}
