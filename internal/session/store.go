package session

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/victornm/quickpick/internal/domain"
)

var (
	// ErrNotFound is returned when no live session exists for a room code.
	// Expired sessions are indistinguishable from absent ones.
	ErrNotFound = stderrors.New("session not found")

	// ErrCodeTaken is returned by Create when a live session already owns
	// the room code. The service retries with a fresh code.
	ErrCodeTaken = stderrors.New("room code taken")
)

// Store is the session repository, keyed by upper-cased room code. All
// mutation goes through Update, which must apply fn atomically with respect
// to concurrent writers of the same room code.
type Store interface {
	// Create stores a new session, failing with ErrCodeTaken when the
	// room code is already in use by a live session.
	Create(ctx context.Context, s *domain.Session) error

	// Get returns the live session for the code, or ErrNotFound. An
	// expired session is removed and reported as ErrNotFound.
	Get(ctx context.Context, roomCode string) (*domain.Session, error)

	// Update atomically applies fn to the current session state and
	// persists the result. An error returned by fn aborts the update and
	// is returned as-is.
	Update(ctx context.Context, roomCode string, fn func(*domain.Session) error) (*domain.Session, error)

	// Delete removes the session. Deleting an absent session is not an
	// error.
	Delete(ctx context.Context, roomCode string) error
}

// ttlFor returns how long a session's key should live, at minimum one
// second so a just-expiring session still hits the lazy expiry path rather
// than an unset TTL.
func ttlFor(s *domain.Session, now time.Time) time.Duration {
	ttl := s.ExpiresAt.Sub(now)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
