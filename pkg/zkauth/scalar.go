package zkauth

import (
	"fmt"
	"math/big"
)

// Scalar is a non-negative integer value carried on the wire as a base-10
// ASCII string. Both flavors use it for challenges, responses, and (when
// generating parameters or deriving a secret) the underlying field element.
type Scalar struct {
	v *big.Int
}

// NewScalar wraps v. The caller retains no reference to v afterwards.
func NewScalar(v *big.Int) Scalar {
	return Scalar{v: new(big.Int).Set(v)}
}

// ParseScalar decodes a canonical decimal string into a Scalar.
func ParseScalar(dec string) (Scalar, error) {
	v, ok := new(big.Int).SetString(dec, 10)
	if !ok || v.Sign() < 0 {
		return Scalar{}, fmt.Errorf("%w: %q is not a non-negative decimal integer", ErrInvalidEncoding, dec)
	}
	return Scalar{v: v}, nil
}

// BigInt returns a copy of the underlying integer.
func (s Scalar) BigInt() *big.Int {
	if s.v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(s.v)
}

// String returns the canonical decimal representation.
func (s Scalar) String() string {
	if s.v == nil {
		return "0"
	}
	return s.v.String()
}

// IsZero reports whether the scalar is the zero value.
func (s Scalar) IsZero() bool {
	return s.v == nil || s.v.Sign() == 0
}

// Element is a group element (multiplicative residue or curve point),
// always carried on the wire as the decimal string of an integer
// representative: the residue itself for the DL flavor, or the unsigned
// big-endian interpretation of the canonical compressed encoding for the EC
// flavor.
type Element struct {
	v *big.Int
}

// NewElement wraps v. The caller retains no reference to v afterwards.
func NewElement(v *big.Int) Element {
	return Element{v: new(big.Int).Set(v)}
}

// ParseElement decodes a canonical decimal string into an Element.
func ParseElement(dec string) (Element, error) {
	v, ok := new(big.Int).SetString(dec, 10)
	if !ok || v.Sign() < 0 {
		return Element{}, fmt.Errorf("%w: %q is not a non-negative decimal integer", ErrInvalidEncoding, dec)
	}
	return Element{v: v}, nil
}

// BigInt returns a copy of the underlying integer representative.
func (e Element) BigInt() *big.Int {
	if e.v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(e.v)
}

// String returns the canonical decimal representation.
func (e Element) String() string {
	if e.v == nil {
		return "0"
	}
	return e.v.String()
}
