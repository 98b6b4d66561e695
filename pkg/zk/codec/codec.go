// Package codec is the canonical encoding of statements and proofs.
//
// Values are encoded as deterministic CBOR maps keyed by field name. Integers are
// embedded with the same MarshalBinary bytes that the transcript absorbs, so a
// decoded proof derives the same challenge as the one that was encoded.
//
// Seal and Open wrap a proof in an Envelope naming its relation and the
// parameter set it was produced under.
package codec

import (
	"bytes"
	"errors"

	"github.com/taurusgroup/paillier-zk/internal/cbor"
	"github.com/taurusgroup/paillier-zk/pkg/zk"
)

// Marshal returns the canonical encoding of v.
func Marshal(v interface{}) ([]byte, error) {
	return cbor.Marshal(v)
}

// ErrNonCanonical is returned when data decodes, but is not the encoding of the decoded value.
var ErrNonCanonical = errors.New("codec: non-canonical encoding")

// Unmarshal decodes data into v. Proofs holding curve points must be
// created with their package's Empty function beforehand.
//
// Only canonical encodings are accepted, so that two different byte strings never
// decode to the same value.
func Unmarshal(data []byte, v interface{}) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return err
	}
	again, err := cbor.Marshal(v)
	if err != nil {
		return err
	}
	if !bytes.Equal(data, again) {
		return ErrNonCanonical
	}
	return nil
}

// Envelope is the transmitted form of a proof.
type Envelope struct {
	Relation string
	// Config is the fingerprint of the parameter set.
	Config []byte
	Proof  cbor.RawMessage
}

// Seal encodes proof inside an Envelope.
func Seal(relation zk.Relation, proof interface{}) ([]byte, error) {
	data, err := cbor.Marshal(proof)
	if err != nil {
		return nil, relation.MalformedProof("encoding", err)
	}
	return cbor.Marshal(&Envelope{
		Relation: string(relation),
		Config:   zk.Current().Fingerprint(),
		Proof:    data,
	})
}

// Open decodes an Envelope produced by Seal into proof.
//
// A proof produced for another relation, or one that does not decode, is a MalformedProof.
// A proof produced under a different parameter set is an InvalidStatement.
func Open(data []byte, relation zk.Relation, proof interface{}) error {
	var env Envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return relation.MalformedProof("envelope", err)
	}
	if env.Relation != string(relation) {
		return relation.MalformedProof("envelope for relation "+env.Relation, nil)
	}
	if !zk.Current().Matches(env.Config) {
		return relation.InvalidStatement("parameter set mismatch", nil)
	}
	if err := Unmarshal(env.Proof, proof); err != nil {
		return relation.MalformedProof("decoding", err)
	}
	return nil
}
