package zk

import (
	"io"

	"github.com/taurusgroup/paillier-zk/pkg/hash"
)

var fingerprint = Current().Fingerprint()

// Challenge derives the challenge stream of a proof.
//
// It forks h, which already carries the caller's context tag, and absorbs in order:
// the relation label, the parameter set fingerprint, the statement values and then the
// commitment values. h itself is left untouched, so the same (h, statement, commitment)
// always yields the same stream.
//
// The returned reader is reduced into the challenge space by the pkg/math/sample functions.
func (r Relation) Challenge(h *hash.Hash, statement, commitment []interface{}) (io.Reader, error) {
	if h == nil {
		h = hash.New()
	}
	t, err := h.Fork(
		hash.BytesWithDomain{TheDomain: "Relation", Bytes: []byte(r)},
		hash.BytesWithDomain{TheDomain: "Config", Bytes: fingerprint},
	)
	if err != nil {
		return nil, err
	}
	if err = t.WriteAny(statement...); err != nil {
		return nil, err
	}
	if err = t.WriteAny(commitment...); err != nil {
		return nil, err
	}
	return t.Digest(), nil
}
