package service

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/allsmog/zkauth-go/pkg/store"
	"github.com/allsmog/zkauth-go/pkg/zkauth"
	"github.com/allsmog/zkauth-go/pkg/zkauth/discretelog"
)

// toyDiscreteLog builds a small toy parameter set: p=23, q=11, g=4, h=9.
func toyDiscreteLog() *discretelog.Flavor {
	return discretelog.New(&discretelog.Parameters{
		P: big.NewInt(23),
		Q: big.NewInt(11),
		G: big.NewInt(4),
		H: big.NewInt(9),
	})
}

func newTestService(t *testing.T) (*Service, *discretelog.Flavor) {
	t.Helper()
	flavor := toyDiscreteLog()
	st := store.NewMemoryStore(time.Minute, time.Hour)
	t.Cleanup(func() { st.Close() })
	svc := New(flavor, st, flavor.Configuration())
	return svc, flavor
}

// Register, create a challenge, and verify with the correct response.
func TestRegisterChallengeVerify(t *testing.T) {
	svc, flavor := newTestService(t)

	x := flavor.DeriveSecret("abc")
	y1, y2, err := flavor.PublicCommitments(x)
	if err != nil {
		t.Fatalf("PublicCommitments: %v", err)
	}
	if err := svc.Register("alice", y1, y2); err != nil {
		t.Fatalf("Register: %v", err)
	}

	k, err := flavor.GenerateScalar()
	if err != nil {
		t.Fatalf("GenerateScalar: %v", err)
	}
	r1, r2, err := flavor.Ephemeral(k)
	if err != nil {
		t.Fatalf("Ephemeral: %v", err)
	}

	authID, c, err := svc.CreateAuthenticationChallenge("alice", r1, r2)
	if err != nil {
		t.Fatalf("CreateAuthenticationChallenge: %v", err)
	}
	if authID == "" {
		t.Fatalf("expected non-empty auth id")
	}

	s, err := flavor.Respond(x, k, c)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	sessionID, err := svc.VerifyAuthentication(authID, s)
	if err != nil {
		t.Fatalf("VerifyAuthentication: %v", err)
	}
	if sessionID == "" {
		t.Fatalf("expected non-empty session id")
	}
}

// A tampered response is rejected, and the challenge is consumed
// regardless, so a retry with the correct response on the same auth id
// returns NotFound.
func TestWrongResponseThenRetryNotFound(t *testing.T) {
	svc, flavor := newTestService(t)

	x := flavor.DeriveSecret("abc")
	y1, y2, _ := flavor.PublicCommitments(x)
	if err := svc.Register("alice", y1, y2); err != nil {
		t.Fatalf("Register: %v", err)
	}

	k, _ := flavor.GenerateScalar()
	r1, r2, _ := flavor.Ephemeral(k)
	authID, c, err := svc.CreateAuthenticationChallenge("alice", r1, r2)
	if err != nil {
		t.Fatalf("CreateAuthenticationChallenge: %v", err)
	}

	s, _ := flavor.Respond(x, k, c)
	wrong := zkauth.NewScalar(new(big.Int).Mod(new(big.Int).Add(s.BigInt(), big.NewInt(1)), big.NewInt(11)))

	if _, err := svc.VerifyAuthentication(authID, wrong); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	if _, err := svc.VerifyAuthentication(authID, s); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected retry to return ErrNotFound (challenge consumed), got %v", err)
	}
}

// Two challenges created for the same user and live at the same time
// yield distinct auth ids and are independently verifiable.
func TestConcurrentChallengesIndependentlyVerifiable(t *testing.T) {
	svc, flavor := newTestService(t)

	x := flavor.DeriveSecret("s3-secret")
	y1, y2, _ := flavor.PublicCommitments(x)
	if err := svc.Register("alice", y1, y2); err != nil {
		t.Fatalf("Register: %v", err)
	}

	k1, _ := flavor.GenerateScalar()
	r1a, r1b, _ := flavor.Ephemeral(k1)
	authID1, c1, err := svc.CreateAuthenticationChallenge("alice", r1a, r1b)
	if err != nil {
		t.Fatalf("CreateAuthenticationChallenge (1): %v", err)
	}

	k2, _ := flavor.GenerateScalar()
	r2a, r2b, _ := flavor.Ephemeral(k2)
	authID2, c2, err := svc.CreateAuthenticationChallenge("alice", r2a, r2b)
	if err != nil {
		t.Fatalf("CreateAuthenticationChallenge (2): %v", err)
	}

	if authID1 == authID2 {
		t.Fatalf("expected distinct auth ids")
	}

	s1, _ := flavor.Respond(x, k1, c1)
	s2, _ := flavor.Respond(x, k2, c2)

	if _, err := svc.VerifyAuthentication(authID1, s1); err != nil {
		t.Fatalf("VerifyAuthentication (1): %v", err)
	}
	if _, err := svc.VerifyAuthentication(authID2, s2); err != nil {
		t.Fatalf("VerifyAuthentication (2): %v", err)
	}
}

// Verifying with a random auth id for a registered-but-challenge-less
// user returns NotFound.
func TestVerifyUnknownAuthIDNotFound(t *testing.T) {
	svc, flavor := newTestService(t)

	x := flavor.DeriveSecret("bob-secret")
	y1, y2, _ := flavor.PublicCommitments(x)
	if err := svc.Register("bob", y1, y2); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.VerifyAuthentication("does-not-exist", zkauth.NewScalar(big.NewInt(1))); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// A challenge verified after its TTL has elapsed returns NotFound.
func TestChallengeExpires(t *testing.T) {
	flavor := toyDiscreteLog()
	st := store.NewMemoryStore(10*time.Millisecond, time.Hour)
	t.Cleanup(func() { st.Close() })
	svc := New(flavor, st, flavor.Configuration())

	x := flavor.DeriveSecret("abc")
	y1, y2, _ := flavor.PublicCommitments(x)
	if err := svc.Register("alice", y1, y2); err != nil {
		t.Fatalf("Register: %v", err)
	}

	k, _ := flavor.GenerateScalar()
	r1, r2, _ := flavor.Ephemeral(k)
	authID, c, err := svc.CreateAuthenticationChallenge("alice", r1, r2)
	if err != nil {
		t.Fatalf("CreateAuthenticationChallenge: %v", err)
	}

	s, _ := flavor.Respond(x, k, c)

	time.Sleep(30 * time.Millisecond)

	if _, err := svc.VerifyAuthentication(authID, s); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired challenge to return ErrNotFound, got %v", err)
	}
}

// Creating a challenge for an unregistered user returns NotFound, and
// registering with an empty user id returns InvalidArgument without
// touching the user table.
func TestInvalidArgumentAndUnknownUser(t *testing.T) {
	svc, flavor := newTestService(t)

	if err := svc.Register("", zkauth.Element{}, zkauth.Element{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	k, _ := flavor.GenerateScalar()
	r1, r2, _ := flavor.Ephemeral(k)
	if _, _, err := svc.CreateAuthenticationChallenge("ghost", r1, r2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unregistered user, got %v", err)
	}
}

func TestGetConfigurationIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)

	first := svc.GetConfiguration()
	second := svc.GetConfiguration()

	if first.Flavor != second.Flavor || first.DiscreteLogarithm.P != second.DiscreteLogarithm.P {
		t.Fatalf("expected GetConfiguration to be idempotent")
	}
}
