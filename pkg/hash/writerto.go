package hash

import "io"

// WriterToWithDomain is implemented by statement components that serialize themselves
// into a transcript under a fixed domain.
//
// The domain string lets the transcript distinguish values of different types whose
// serializations happen to coincide.
type WriterToWithDomain interface {
	io.WriterTo

	// Domain returns a context string, unique for each implementor.
	Domain() string
}

// BytesWithDomain annotates a chunk of data with a domain.
//
// It is used for labels, context tags and raw protocol bytes.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

// WriteTo implements io.WriterTo. A nil Bytes field is refused so that an absent
// value cannot be confused with an empty one.
func (b BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	if b.Bytes == nil {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

// Domain implements WriterToWithDomain.
func (b BytesWithDomain) Domain() string {
	return b.TheDomain
}
