// Package elliptic implements the Chaum-Pedersen Prover and Verifier over
// the Ristretto255 prime-order group.
package elliptic

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/gtank/ristretto255"

	"github.com/allsmog/zkauth-go/pkg/zkauth"
)

// groupOrderAttempts bounds the zero-rejection retry loop in scalar
// generation; a zero draw from a 512-bit uniform source is astronomically
// unlikely, this just keeps the loop principled rather than unbounded.
const groupOrderAttempts = 16

// order returns the Ristretto255 group order, l = 2^252 +
// 27742317777372353535851937790883648493.
func order() *big.Int {
	o := new(big.Int).Lsh(big.NewInt(1), 252)
	addend, _ := new(big.Int).SetString("27742317777372353535851937790883648493", 10)
	return o.Add(o, addend)
}

// Flavor implements zkauth.Prover and zkauth.Verifier over a fixed pair of
// Ristretto255 basepoints (G, H).
type Flavor struct {
	g *ristretto255.Element
	h *ristretto255.Element
}

// GenerateParameters sets G to the canonical Ristretto255 basepoint and H
// to a point derived from 64 bytes of fresh entropy.
func GenerateParameters() (*Flavor, error) {
	seed := make([]byte, 64)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("%w: %v", zkauth.ErrParameterGeneration, err)
	}
	h := ristretto255.NewElement().FromUniformBytes(seed)

	return &Flavor{
		g: ristretto255.NewElement().Base(),
		h: h,
	}, nil
}

// New wraps already-constructed basepoints.
func New(g, h *ristretto255.Element) *Flavor {
	return &Flavor{g: g, h: h}
}

// Configuration returns the public parameter record for GetConfiguration
// and for config-file persistence.
func (f *Flavor) Configuration() zkauth.Configuration {
	return zkauth.Configuration{
		Flavor: zkauth.FlavorEllipticCurve,
		EllipticCurve: &zkauth.EllipticCurveParameters{
			G: elementToDecimal(f.g),
			H: elementToDecimal(f.h),
		},
	}
}

// FromConfiguration reconstructs a Flavor from a previously persisted or
// transmitted Configuration.
func FromConfiguration(cfg zkauth.Configuration) (*Flavor, error) {
	if cfg.Flavor != zkauth.FlavorEllipticCurve || cfg.EllipticCurve == nil {
		return nil, fmt.Errorf("%w: not an elliptic-curve configuration", zkauth.ErrInvalidEncoding)
	}

	g, err := decimalToElement(cfg.EllipticCurve.G)
	if err != nil {
		return nil, err
	}
	h, err := decimalToElement(cfg.EllipticCurve.H)
	if err != nil {
		return nil, err
	}

	return &Flavor{g: g, h: h}, nil
}

// elementToDecimal returns the decimal string of the unsigned big-endian
// interpretation of the element's canonical compressed encoding.
func elementToDecimal(e *ristretto255.Element) string {
	return new(big.Int).SetBytes(e.Encode(nil)).String()
}

// identityElement returns the group identity point.
func identityElement() *ristretto255.Element {
	return ristretto255.NewElement()
}

// decimalToElement inverts elementToDecimal, validating that the result is
// a canonical Ristretto255 encoding.
func decimalToElement(dec string) (*ristretto255.Element, error) {
	v, ok := new(big.Int).SetString(dec, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q is not a non-negative decimal integer", zkauth.ErrInvalidEncoding, dec)
	}
	if v.BitLen() > 256 {
		return nil, fmt.Errorf("%w: %q does not fit in 32 bytes", zkauth.ErrInvalidEncoding, dec)
	}

	b := v.FillBytes(make([]byte, 32))
	el := ristretto255.NewElement()
	if err := el.Decode(b); err != nil {
		return nil, fmt.Errorf("%w: %v", zkauth.ErrInvalidEncoding, err)
	}
	return el, nil
}

// toRistrettoScalar converts a zkauth.Scalar (big-endian decimal value) into
// the group library's little-endian canonical scalar encoding.
func toRistrettoScalar(s zkauth.Scalar) (*ristretto255.Scalar, error) {
	if s.BigInt().BitLen() > 256 {
		return nil, fmt.Errorf("%w: scalar %s does not fit in 32 bytes", zkauth.ErrInvalidEncoding, s)
	}
	be := s.BigInt().FillBytes(make([]byte, 32))
	le := make([]byte, 32)
	for i := range be {
		le[len(be)-1-i] = be[i]
	}

	sc := ristretto255.NewScalar()
	if err := sc.Decode(le); err != nil {
		return nil, fmt.Errorf("%w: %v", zkauth.ErrInvalidEncoding, err)
	}
	return sc, nil
}

// fromRistrettoScalar converts the group library's little-endian canonical
// scalar encoding into a zkauth.Scalar (big-endian decimal value).
func fromRistrettoScalar(sc *ristretto255.Scalar) zkauth.Scalar {
	le := sc.Encode(nil)
	be := make([]byte, len(le))
	for i := range le {
		be[len(le)-1-i] = le[i]
	}
	return zkauth.NewScalar(new(big.Int).SetBytes(be))
}

// DeriveSecret interprets the password bytes as an unsigned big-endian
// integer and reduces mod the group order, with no hashing or KDF: the
// password bytes are the secret's canonical encoding, nothing more.
func (f *Flavor) DeriveSecret(password string) zkauth.Scalar {
	x := new(big.Int).SetBytes([]byte(password))
	x.Mod(x, order())
	return zkauth.NewScalar(x)
}

// GenerateScalar draws a fresh scalar uniformly from the field, rejecting
// the zero scalar.
func (f *Flavor) GenerateScalar() (zkauth.Scalar, error) {
	zero := ristretto255.NewScalar()

	for attempt := 0; attempt < groupOrderAttempts; attempt++ {
		seed := make([]byte, 64)
		if _, err := rand.Read(seed); err != nil {
			return zkauth.Scalar{}, fmt.Errorf("%w: %v", zkauth.ErrInternal, err)
		}

		sc := ristretto255.NewScalar().FromUniformBytes(seed)
		if sc.Equal(zero) == 1 {
			continue
		}
		return fromRistrettoScalar(sc), nil
	}

	return zkauth.Scalar{}, fmt.Errorf("%w: exhausted scalar generation attempts", zkauth.ErrInternal)
}

// PublicCommitments computes (x*G, x*H).
func (f *Flavor) PublicCommitments(x zkauth.Scalar) (zkauth.Element, zkauth.Element, error) {
	xs, err := toRistrettoScalar(x)
	if err != nil {
		return zkauth.Element{}, zkauth.Element{}, err
	}

	y1 := ristretto255.NewElement().ScalarMult(xs, f.g)
	y2 := ristretto255.NewElement().ScalarMult(xs, f.h)

	e1, err := zkauth.ParseElement(elementToDecimal(y1))
	if err != nil {
		return zkauth.Element{}, zkauth.Element{}, err
	}
	e2, err := zkauth.ParseElement(elementToDecimal(y2))
	if err != nil {
		return zkauth.Element{}, zkauth.Element{}, err
	}
	return e1, e2, nil
}

// Ephemeral computes (k*G, k*H): the same computation as PublicCommitments,
// against a freshly sampled k.
func (f *Flavor) Ephemeral(k zkauth.Scalar) (zkauth.Element, zkauth.Element, error) {
	return f.PublicCommitments(k)
}

// Respond computes s = (k + c*x) mod q.
func (f *Flavor) Respond(x, k, c zkauth.Scalar) (zkauth.Scalar, error) {
	cx := new(big.Int).Mul(c.BigInt(), x.BigInt())
	s := new(big.Int).Add(k.BigInt(), cx)
	s.Mod(s, order())
	return zkauth.NewScalar(s), nil
}

// GenerateChallenge draws a fresh challenge scalar.
func (f *Flavor) GenerateChallenge() (zkauth.Scalar, error) {
	return f.GenerateScalar()
}

// Check accepts iff r1 == s*G - c*y1 and r2 == s*H - c*y2.
func (f *Flavor) Check(y1, y2, r1, r2 zkauth.Element, c, s zkauth.Scalar) (bool, error) {
	y1e, err := decimalToElement(y1.String())
	if err != nil {
		return false, err
	}
	y2e, err := decimalToElement(y2.String())
	if err != nil {
		return false, err
	}
	r1e, err := decimalToElement(r1.String())
	if err != nil {
		return false, err
	}
	r2e, err := decimalToElement(r2.String())
	if err != nil {
		return false, err
	}

	ss, err := toRistrettoScalar(s)
	if err != nil {
		return false, err
	}
	cs, err := toRistrettoScalar(c)
	if err != nil {
		return false, err
	}

	sg := ristretto255.NewElement().ScalarMult(ss, f.g)
	cy1 := ristretto255.NewElement().ScalarMult(cs, y1e)
	lhs1 := ristretto255.NewElement().Subtract(sg, cy1)

	sh := ristretto255.NewElement().ScalarMult(ss, f.h)
	cy2 := ristretto255.NewElement().ScalarMult(cs, y2e)
	lhs2 := ristretto255.NewElement().Subtract(sh, cy2)

	return lhs1.Equal(r1e) == 1 && lhs2.Equal(r2e) == 1, nil
}
