// Package zk holds what the relation packages under pkg/zk share: the error
// taxonomy, the parameter set, and the Fiat-Shamir challenge derivation.
//
// Each relation lives in its own package (zkenc, zklogstar, zkaffg, zkmod, zkfac, zkprm)
// and exposes the same shape: Public, Private, Commitment and Proof types, a NewProof
// function taking an explicit randomness source, and a Verify method.
package zk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidStatement is returned when the statement, or the witness given to a prover,
	// is malformed or outside its declared range.
	ErrInvalidStatement = errors.New("invalid statement")
	// ErrSamplingFailed is returned when a bounded rejection-sampling loop gives up,
	// or when the randomness source fails.
	ErrSamplingFailed = errors.New("sampling failed")
	// ErrVerificationFailed is returned when an equation or range check of a verifier does not hold.
	ErrVerificationFailed = errors.New("verification failed")
	// ErrMalformedProof is returned when a proof does not have the expected shape.
	ErrMalformedProof = errors.New("malformed proof")
)

// IsRejection reports whether err means that a proof was refused by its verifier.
func IsRejection(err error) bool {
	return errors.Is(err, ErrVerificationFailed) || errors.Is(err, ErrMalformedProof)
}

// Error is returned by every prover and verifier. errors.Is matches it against its Kind
// and its underlying cause.
type Error struct {
	Relation Relation
	// Kind is one of the Err* sentinels of this package.
	Kind error
	// Reason names the check that failed.
	Reason string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", e.Relation, e.Kind)
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Relation names a proven relation. It labels the transcript and the errors of its package.
type Relation string

func (r Relation) newError(kind error, reason string, cause error) *Error {
	err := &Error{
		Relation: r,
		Kind:     kind,
		Reason:   reason,
		Err:      cause,
	}
	entry := Logger.WithFields(logrus.Fields{
		"relation": string(r),
		"kind":     kind.Error(),
		"reason":   reason,
	})
	if cause != nil {
		entry = entry.WithError(cause)
	}
	switch kind {
	case ErrSamplingFailed:
		entry.Warn("proof generation aborted")
	case ErrInvalidStatement:
		entry.Debug("statement refused")
	default:
		entry.Debug("proof rejected")
	}
	return err
}

// InvalidStatement returns an error of kind ErrInvalidStatement.
func (r Relation) InvalidStatement(reason string, cause error) error {
	return r.newError(ErrInvalidStatement, reason, cause)
}

// SamplingFailed returns an error of kind ErrSamplingFailed.
func (r Relation) SamplingFailed(reason string, cause error) error {
	return r.newError(ErrSamplingFailed, reason, cause)
}

// VerificationFailed returns an error of kind ErrVerificationFailed.
func (r Relation) VerificationFailed(reason string) error {
	return r.newError(ErrVerificationFailed, reason, nil)
}

// MalformedProof returns an error of kind ErrMalformedProof.
func (r Relation) MalformedProof(reason string, cause error) error {
	return r.newError(ErrMalformedProof, reason, cause)
}
