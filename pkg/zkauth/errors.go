// Package zkauth defines the flavor-agnostic Chaum-Pedersen proof surface:
// the Scalar/Element wire types, the Prover/Verifier capability interfaces,
// and the public parameter Configuration shared by both algebraic flavors.
package zkauth

import "errors"

// Sentinel errors. Each maps to exactly one status category at the wire
// boundary (pkg/api); pkg/service classifies everything else.
var (
	// ErrInvalidEncoding is returned by Parse* when a wire value is not a
	// well-formed non-negative decimal integer.
	ErrInvalidEncoding = errors.New("zkauth: invalid encoding")

	// ErrInvalidArgument marks a structurally valid but semantically
	// rejected request argument (e.g. an empty username).
	ErrInvalidArgument = errors.New("zkauth: invalid argument")

	// ErrNotFound marks a missing user or challenge record.
	ErrNotFound = errors.New("zkauth: not found")

	// ErrUnauthenticated marks a proof that failed the arithmetic check.
	ErrUnauthenticated = errors.New("zkauth: unauthenticated")

	// ErrFailedPrecondition marks a challenge whose referenced user
	// vanished between challenge creation and verification.
	ErrFailedPrecondition = errors.New("zkauth: failed precondition")

	// ErrParameterGeneration marks exhaustion of retries while generating
	// a fresh parameter set.
	ErrParameterGeneration = errors.New("zkauth: parameter generation failed")

	// ErrInternal marks an unexpected failure (RNG failure, and the like).
	ErrInternal = errors.New("zkauth: internal error")
)
