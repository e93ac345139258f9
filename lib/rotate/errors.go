// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rotate

import "fmt"

// Kind classifies a pipeline failure. Every failure aborts the run;
// the kind tells the operator which stage to look at. None of the
// kinds are retried within a run — the external scheduler's recurrence
// is the retry mechanism.
type Kind int

const (
	// KindConfiguration covers missing or malformed inputs: private
	// key, identifiers, target coordinates. Detected before any
	// network call.
	KindConfiguration Kind = iota + 1

	// KindSigning covers cryptographic signing failure while building
	// the assertion.
	KindSigning

	// KindUpstream covers any non-2xx or malformed-body response from
	// the store across the three HTTP calls.
	KindUpstream

	// KindEncryption covers key-length mismatch and sealing failure.
	// An encryption failure always prevents the publish call.
	KindEncryption
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindSigning:
		return "signing error"
	case KindUpstream:
		return "upstream error"
	case KindEncryption:
		return "encryption error"
	default:
		return "unknown error"
	}
}

// Error is a pipeline failure with its stage classification. The
// wrapped error never carries key material, assertions, or tokens.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// fail wraps err with its stage classification.
func fail(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
