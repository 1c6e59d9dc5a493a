// Package discretelog implements the Chaum-Pedersen Prover and Verifier
// over a classical multiplicative group modulo a large prime.
package discretelog

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/allsmog/zkauth-go/pkg/zkauth"
)

// generatorSearchAttempts bounds the retry loops in GenerateParameters.
// Each loop draws fresh randomness from crypto/rand and rejects degenerate
// outcomes (g == 1, h == g); exhaustion after this many attempts is treated
// as parameter generation failure rather than looping forever.
const generatorSearchAttempts = 4096

// Parameters holds the public DL group description (p, q, g, h).
type Parameters struct {
	P, Q, G, H *big.Int
}

// GenerateParameters produces a fresh (p, q, g, h) with q of the requested
// bit length: q prime, p = k*q + 1 prime for some even k, and g, h
// generators of the order-q subgroup of Z_p^*, g != h.
func GenerateParameters(bits int) (*Parameters, error) {
	for attempt := 0; attempt < generatorSearchAttempts; attempt++ {
		q, err := rand.Prime(rand.Reader, bits)
		if err != nil {
			continue
		}

		p, ok := findSafePrime(q)
		if !ok {
			continue
		}

		g, err := findGenerator(p, q, nil)
		if err != nil {
			continue
		}
		h, err := findGenerator(p, q, g)
		if err != nil {
			continue
		}

		return &Parameters{P: p, Q: q, G: g, H: h}, nil
	}

	return nil, fmt.Errorf("%w: exhausted %d attempts generating discrete-log parameters", zkauth.ErrParameterGeneration, generatorSearchAttempts)
}

// GenerateParametersWithQ builds (p, q, g, h) using a caller-supplied prime
// q instead of drawing one at random: backs the CLI's explicit-prime
// override (-config-prime, as opposed to -config-prime-bits).
func GenerateParametersWithQ(q *big.Int) (*Parameters, error) {
	if !q.ProbablyPrime(20) {
		return nil, fmt.Errorf("%w: supplied value is not prime", zkauth.ErrInvalidArgument)
	}

	p, ok := findSafePrime(q)
	if !ok {
		return nil, fmt.Errorf("%w: no p = k*q+1 found for the supplied q", zkauth.ErrParameterGeneration)
	}

	g, err := findGenerator(p, q, nil)
	if err != nil {
		return nil, err
	}
	h, err := findGenerator(p, q, g)
	if err != nil {
		return nil, err
	}

	return &Parameters{P: p, Q: q, G: g, H: h}, nil
}

// findSafePrime searches for a prime p = k*q + 1, k even, within a bounded
// number of candidates.
func findSafePrime(q *big.Int) (*big.Int, bool) {
	one := big.NewInt(1)
	p := new(big.Int)
	for k := int64(2); k < 100000; k += 2 {
		p.Mul(q, big.NewInt(k))
		p.Add(p, one)
		if p.ProbablyPrime(20) {
			return new(big.Int).Set(p), true
		}
	}
	return nil, false
}

// findGenerator draws random a in [2, p-2] and sets g = a^((p-1)/q) mod p
// until g is neither 1 nor equal to exclude.
func findGenerator(p, q, exclude *big.Int) (*big.Int, error) {
	exponent := new(big.Int).Sub(p, big.NewInt(1))
	exponent.Div(exponent, q)

	one := big.NewInt(1)
	upper := new(big.Int).Sub(p, big.NewInt(3)) // range size for [2, p-2]

	for attempt := 0; attempt < generatorSearchAttempts; attempt++ {
		a, err := rand.Int(rand.Reader, upper)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", zkauth.ErrParameterGeneration, err)
		}
		a.Add(a, big.NewInt(2))

		g := new(big.Int).Exp(a, exponent, p)
		if g.Cmp(one) == 0 {
			continue
		}
		if exclude != nil && g.Cmp(exclude) == 0 {
			continue
		}
		return g, nil
	}

	return nil, fmt.Errorf("%w: exhausted generator search", zkauth.ErrParameterGeneration)
}

// Flavor implements zkauth.Prover and zkauth.Verifier over a fixed
// Parameters set.
type Flavor struct {
	params *Parameters
}

// New wraps an already-generated or already-loaded parameter set.
func New(params *Parameters) *Flavor {
	return &Flavor{params: params}
}

// Configuration returns the public parameter record for GetConfiguration
// and for config-file persistence.
func (f *Flavor) Configuration() zkauth.Configuration {
	return zkauth.Configuration{
		Flavor: zkauth.FlavorDiscreteLogarithm,
		DiscreteLogarithm: &zkauth.DiscreteLogarithmParameters{
			P: f.params.P.String(),
			Q: f.params.Q.String(),
			G: f.params.G.String(),
			H: f.params.H.String(),
		},
	}
}

// FromConfiguration reconstructs a Flavor from a previously persisted or
// transmitted Configuration.
func FromConfiguration(cfg zkauth.Configuration) (*Flavor, error) {
	if cfg.Flavor != zkauth.FlavorDiscreteLogarithm || cfg.DiscreteLogarithm == nil {
		return nil, fmt.Errorf("%w: not a discrete-logarithm configuration", zkauth.ErrInvalidEncoding)
	}

	parse := func(s string) (*big.Int, error) {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a decimal integer", zkauth.ErrInvalidEncoding, s)
		}
		return v, nil
	}

	p, err := parse(cfg.DiscreteLogarithm.P)
	if err != nil {
		return nil, err
	}
	q, err := parse(cfg.DiscreteLogarithm.Q)
	if err != nil {
		return nil, err
	}
	g, err := parse(cfg.DiscreteLogarithm.G)
	if err != nil {
		return nil, err
	}
	h, err := parse(cfg.DiscreteLogarithm.H)
	if err != nil {
		return nil, err
	}

	return &Flavor{params: &Parameters{P: p, Q: q, G: g, H: h}}, nil
}

// randomScalar draws a uniform value in [1, q-1], rejecting zero.
func randomScalar(q *big.Int) (zkauth.Scalar, error) {
	qMinusOne := new(big.Int).Sub(q, big.NewInt(1))
	for {
		v, err := rand.Int(rand.Reader, qMinusOne)
		if err != nil {
			return zkauth.Scalar{}, fmt.Errorf("%w: %v", zkauth.ErrInternal, err)
		}
		v.Add(v, big.NewInt(1)) // shift [0, q-2] -> [1, q-1]
		if v.Sign() != 0 {
			return zkauth.NewScalar(v), nil
		}
	}
}

// DeriveSecret interprets the password bytes as an unsigned big-endian
// integer and reduces mod q, with no hashing or KDF: the password bytes
// are the secret's canonical encoding, nothing more.
func (f *Flavor) DeriveSecret(password string) zkauth.Scalar {
	x := new(big.Int).SetBytes([]byte(password))
	x.Mod(x, f.params.Q)
	return zkauth.NewScalar(x)
}

// GenerateScalar draws a fresh scalar in [1, q-1].
func (f *Flavor) GenerateScalar() (zkauth.Scalar, error) {
	return randomScalar(f.params.Q)
}

// PublicCommitments computes (g^x mod p, h^x mod p).
func (f *Flavor) PublicCommitments(x zkauth.Scalar) (zkauth.Element, zkauth.Element, error) {
	y1 := new(big.Int).Exp(f.params.G, x.BigInt(), f.params.P)
	y2 := new(big.Int).Exp(f.params.H, x.BigInt(), f.params.P)
	return zkauth.NewElement(y1), zkauth.NewElement(y2), nil
}

// Ephemeral computes (g^k mod p, h^k mod p): the same computation as
// PublicCommitments, against a freshly sampled k.
func (f *Flavor) Ephemeral(k zkauth.Scalar) (zkauth.Element, zkauth.Element, error) {
	return f.PublicCommitments(k)
}

// Respond computes s = (k - c*x) mod q.
func (f *Flavor) Respond(x, k, c zkauth.Scalar) (zkauth.Scalar, error) {
	cx := new(big.Int).Mul(c.BigInt(), x.BigInt())
	s := new(big.Int).Sub(k.BigInt(), cx)
	s.Mod(s, f.params.Q)
	return zkauth.NewScalar(s), nil
}

// GenerateChallenge draws a fresh challenge in [1, q-1].
func (f *Flavor) GenerateChallenge() (zkauth.Scalar, error) {
	return randomScalar(f.params.Q)
}

// Check accepts iff r1 == g^s * y1^c (mod p) and r2 == h^s * y2^c (mod p).
func (f *Flavor) Check(y1, y2, r1, r2 zkauth.Element, c, s zkauth.Scalar) (bool, error) {
	p := f.params.P

	gs := new(big.Int).Exp(f.params.G, s.BigInt(), p)
	y1c := new(big.Int).Exp(y1.BigInt(), c.BigInt(), p)
	lhs1 := gs.Mul(gs, y1c)
	lhs1.Mod(lhs1, p)

	hs := new(big.Int).Exp(f.params.H, s.BigInt(), p)
	y2c := new(big.Int).Exp(y2.BigInt(), c.BigInt(), p)
	lhs2 := hs.Mul(hs, y2c)
	lhs2.Mod(lhs2, p)

	return lhs1.Cmp(r1.BigInt()) == 0 && lhs2.Cmp(r2.BigInt()) == 0, nil
}
