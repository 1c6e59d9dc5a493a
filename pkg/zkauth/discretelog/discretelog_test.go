package discretelog

import (
	"math/big"
	"testing"

	"github.com/allsmog/zkauth-go/pkg/zkauth"
)

// toyFlavor builds a small toy parameter set: p=23, q=11, g=4, h=9.
func toyFlavor(t *testing.T) *Flavor {
	t.Helper()
	return New(&Parameters{
		P: big.NewInt(23),
		Q: big.NewInt(11),
		G: big.NewInt(4),
		H: big.NewInt(9),
	})
}

func TestProveAndVerify(t *testing.T) {
	f := toyFlavor(t)

	x := f.DeriveSecret("abc")
	y1, y2, err := f.PublicCommitments(x)
	if err != nil {
		t.Fatalf("PublicCommitments: %v", err)
	}

	k, err := f.GenerateScalar()
	if err != nil {
		t.Fatalf("GenerateScalar: %v", err)
	}
	r1, r2, err := f.Ephemeral(k)
	if err != nil {
		t.Fatalf("Ephemeral: %v", err)
	}

	c, err := f.GenerateChallenge()
	if err != nil {
		t.Fatalf("GenerateChallenge: %v", err)
	}

	s, err := f.Respond(x, k, c)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	ok, err := f.Check(y1, y2, r1, r2, c, s)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid proof to be accepted")
	}
}

func TestVerifyRejectsWrongResponse(t *testing.T) {
	f := toyFlavor(t)

	x := f.DeriveSecret("abc")
	y1, y2, _ := f.PublicCommitments(x)

	k, _ := f.GenerateScalar()
	r1, r2, _ := f.Ephemeral(k)
	c, _ := f.GenerateChallenge()
	s, _ := f.Respond(x, k, c)

	wrong := zkauth.NewScalar(new(big.Int).Add(s.BigInt(), big.NewInt(1)))
	wrong = zkauth.NewScalar(new(big.Int).Mod(wrong.BigInt(), f.params.Q))

	ok, err := f.Check(y1, y2, r1, r2, c, wrong)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if ok {
		t.Fatalf("expected tampered response to be rejected")
	}
}

func TestDeriveSecretEmptyPasswordIsZero(t *testing.T) {
	f := toyFlavor(t)

	x := f.DeriveSecret("")
	if !x.IsZero() {
		t.Fatalf("expected empty password to derive to zero, got %s", x)
	}

	y1, y2, err := f.PublicCommitments(x)
	if err != nil {
		t.Fatalf("PublicCommitments: %v", err)
	}
	if y1.String() != "1" || y2.String() != "1" {
		t.Fatalf("expected identity commitments for zero secret, got (%s, %s)", y1, y2)
	}
}

func TestGenerateParametersSatisfiesInvariants(t *testing.T) {
	params, err := GenerateParameters(48)
	if err != nil {
		t.Fatalf("GenerateParameters: %v", err)
	}

	if !params.Q.ProbablyPrime(20) {
		t.Fatalf("q is not prime")
	}
	if !params.P.ProbablyPrime(20) {
		t.Fatalf("p is not prime")
	}

	pMinusOne := new(big.Int).Sub(params.P, big.NewInt(1))
	if new(big.Int).Mod(pMinusOne, params.Q).Sign() != 0 {
		t.Fatalf("q does not divide p-1")
	}

	if new(big.Int).Exp(params.G, params.Q, params.P).Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("g^q != 1 mod p")
	}
	if new(big.Int).Exp(params.H, params.Q, params.P).Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("h^q != 1 mod p")
	}
	if params.G.Cmp(params.H) == 0 {
		t.Fatalf("g == h")
	}
}

func TestConfigurationRoundTrip(t *testing.T) {
	f := toyFlavor(t)
	cfg := f.Configuration()

	if cfg.Flavor != zkauth.FlavorDiscreteLogarithm {
		t.Fatalf("unexpected flavor tag: %s", cfg.Flavor)
	}

	restored, err := FromConfiguration(cfg)
	if err != nil {
		t.Fatalf("FromConfiguration: %v", err)
	}

	if restored.params.P.Cmp(f.params.P) != 0 || restored.params.Q.Cmp(f.params.Q) != 0 ||
		restored.params.G.Cmp(f.params.G) != 0 || restored.params.H.Cmp(f.params.H) != 0 {
		t.Fatalf("round-tripped parameters do not match original")
	}
}
