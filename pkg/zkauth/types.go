package zkauth

// Prover is the capability set a flavor exposes to derive a secret and
// produce the commitment/response half of the sigma protocol. Both the DL
// and EC flavors implement it; clients such as cmd/zkauth-demo use it,
// while pkg/service holds only the Verifier half.
type Prover interface {
	// DeriveSecret maps a password to the secret scalar x. Deterministic;
	// the empty password deterministically maps to zero in both flavors.
	DeriveSecret(password string) Scalar

	// GenerateScalar draws a fresh scalar uniformly from [1, q-1]. Used for
	// the per-challenge ephemeral k; the registration secret comes from
	// DeriveSecret.
	GenerateScalar() (Scalar, error)

	// PublicCommitments computes (y1, y2) for secret x.
	PublicCommitments(x Scalar) (y1, y2 Element, err error)

	// Ephemeral computes (r1, r2) for a freshly sampled k; algebraically
	// identical to PublicCommitments but named separately to mirror the
	// protocol's two distinct roles for the same computation.
	Ephemeral(k Scalar) (r1, r2 Element, err error)

	// Respond computes the response scalar s from (x, k, c) using the
	// flavor's pinned sign convention.
	Respond(x, k, c Scalar) (Scalar, error)
}

// Verifier is the capability set a flavor exposes to challenge and check a
// proof. No secret material passes through it.
type Verifier interface {
	// GenerateChallenge draws a fresh challenge scalar uniformly from
	// [1, q-1].
	GenerateChallenge() (Scalar, error)

	// Check reconstructs the commitments from (y1, y2, c, s) and reports
	// whether they match the claimed (r1, r2).
	Check(y1, y2, r1, r2 Element, c, s Scalar) (bool, error)
}

// Flavor identifies which algebraic group a Configuration and its paired
// Prover/Verifier operate over.
type Flavor string

const (
	FlavorDiscreteLogarithm Flavor = "discrete_logarithm"
	FlavorEllipticCurve     Flavor = "elliptic_curve"
)

// DiscreteLogarithmParameters is the public parameter set for the
// multiplicative-group flavor, all fields decimal-encoded.
type DiscreteLogarithmParameters struct {
	P string `json:"p"`
	Q string `json:"q"`
	G string `json:"g"`
	H string `json:"h"`
}

// EllipticCurveParameters is the public parameter set for the Ristretto255
// flavor, both fields decimal-encoded.
type EllipticCurveParameters struct {
	G string `json:"g"`
	H string `json:"h"`
}

// Configuration is the tagged union returned by GetConfiguration and
// persisted by the server's config file. Exactly one of DiscreteLogarithm
// or EllipticCurve is populated, selected by Flavor.
type Configuration struct {
	Flavor            Flavor                       `json:"flavor"`
	DiscreteLogarithm *DiscreteLogarithmParameters `json:"discrete_logarithm,omitempty"`
	EllipticCurve     *EllipticCurveParameters     `json:"elliptic_curve,omitempty"`
}
