// Package service implements the auth state machine: it orchestrates
// register / create-challenge / verify across a zkauth.Verifier and a
// store.Store, independent of any wire transport.
package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/allsmog/zkauth-go/pkg/store"
	"github.com/allsmog/zkauth-go/pkg/zkauth"
)

// Service is the concurrency-safe auth state machine. A single instance is
// bound to one flavor and one configuration for its lifetime; all exported
// methods are safe to call concurrently (they delegate concurrency control
// to store.Store and hold no additional state of their own).
type Service struct {
	verifier zkauth.Verifier
	store    store.Store
	config   zkauth.Configuration
}

// New builds a Service bound to the given verifier, store, and public
// configuration. The verifier is the half of the Prover/Verifier capability
// set the server side needs; the prover half is exercised only by clients
// (cmd/zkauth-demo), never by the service.
func New(verifier zkauth.Verifier, st store.Store, config zkauth.Configuration) *Service {
	return &Service{verifier: verifier, store: st, config: config}
}

// GetConfiguration returns the public parameter record. Pure, concurrent
// safe, touches no state.
func (s *Service) GetConfiguration() zkauth.Configuration {
	return s.config
}

// Register upserts a user's public commitment pair. Re-registration of an
// existing user overwrites its record.
func (s *Service) Register(userID string, y1, y2 zkauth.Element) error {
	if userID == "" {
		return fmt.Errorf("%w: user must not be empty", ErrInvalidArgument)
	}

	if err := s.store.UpsertUser(store.User{ID: userID, Y1: y1, Y2: y2}); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return nil
}

// CreateAuthenticationChallenge samples a fresh challenge scalar, mints a
// fresh auth id, and stores the pending challenge. Multiple challenges may
// be live for the same user simultaneously, each with its own auth id.
func (s *Service) CreateAuthenticationChallenge(userID string, r1, r2 zkauth.Element) (authID string, c zkauth.Scalar, err error) {
	if userID == "" {
		return "", zkauth.Scalar{}, fmt.Errorf("%w: user must not be empty", ErrInvalidArgument)
	}

	if _, err := s.store.GetUser(userID); err != nil {
		return "", zkauth.Scalar{}, fmt.Errorf("%w: user %q is not registered", ErrNotFound, userID)
	}

	c, err = s.verifier.GenerateChallenge()
	if err != nil {
		return "", zkauth.Scalar{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	authID = uuid.NewString()
	challenge := store.Challenge{
		AuthID: authID,
		UserID: userID,
		R1:     r1,
		R2:     r2,
		C:      c,
	}
	if err := s.store.PutChallenge(challenge); err != nil {
		return "", zkauth.Scalar{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return authID, c, nil
}

// VerifyAuthentication consumes the challenge (single-use, regardless of
// outcome) and checks the submitted response against it. On success it
// mints and stores a fresh session, returning its id.
func (s *Service) VerifyAuthentication(authID string, response zkauth.Scalar) (sessionID string, err error) {
	challenge, err := s.store.TakeChallenge(authID)
	if err != nil {
		return "", fmt.Errorf("%w: auth id %q not found", ErrNotFound, authID)
	}

	user, err := s.store.GetUser(challenge.UserID)
	if err != nil {
		return "", fmt.Errorf("%w: user %q is no longer registered", ErrFailedPrecondition, challenge.UserID)
	}

	ok, err := s.verifier.Check(user.Y1, user.Y2, challenge.R1, challenge.R2, challenge.C, response)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: proof did not verify", ErrUnauthenticated)
	}

	sessionID = uuid.NewString()
	session := store.Session{SessionID: sessionID, UserID: challenge.UserID}
	if err := s.store.PutSession(session); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return sessionID, nil
}
