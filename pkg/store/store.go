// Package store holds the verifier's process-lifetime state: registered
// users, live challenges, and issued sessions.
package store

import (
	"errors"
	"time"

	"github.com/allsmog/zkauth-go/pkg/zkauth"
)

var (
	// ErrUserNotFound indicates no user is registered under the given id.
	ErrUserNotFound = errors.New("store: user not found")

	// ErrChallengeNotFound indicates no live (unconsumed, unexpired)
	// challenge exists under the given auth id.
	ErrChallengeNotFound = errors.New("store: challenge not found")

	// ErrSessionNotFound indicates no live session exists under the given
	// session id.
	ErrSessionNotFound = errors.New("store: session not found")
)

// User is a registered user's public commitment pair.
type User struct {
	ID string
	Y1 zkauth.Element
	Y2 zkauth.Element
}

// Challenge is a live challenge: the ephemeral commitment the prover
// submitted, the challenge scalar the verifier drew, and the user it is
// bound to.
type Challenge struct {
	AuthID    string
	UserID    string
	R1        zkauth.Element
	R2        zkauth.Element
	C         zkauth.Scalar
	CreatedAt time.Time
}

// Session is an issued bearer token, opaque to the holder.
type Session struct {
	SessionID string
	UserID    string
	CreatedAt time.Time
}

// Store is the verifier's persistence boundary. Every operation is
// individually atomic; there is no cross-map transaction.
type Store interface {
	// UpsertUser inserts or overwrites a user record.
	UpsertUser(user User) error

	// GetUser returns a copy of the user record, or ErrUserNotFound.
	GetUser(userID string) (User, error)

	// PutChallenge inserts a fresh challenge record.
	PutChallenge(challenge Challenge) error

	// TakeChallenge atomically removes and returns the challenge record,
	// or ErrChallengeNotFound if it is absent, expired, or already
	// consumed.
	TakeChallenge(authID string) (Challenge, error)

	// PutSession inserts a fresh session record.
	PutSession(session Session) error

	// GetSession returns a copy of the session record, or
	// ErrSessionNotFound if it is absent or expired.
	GetSession(sessionID string) (Session, error)

	// Close releases any resources held by the store (background
	// goroutines, connections). Safe to call once during shutdown.
	Close() error
}
