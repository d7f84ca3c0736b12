// Package session owns the lifecycle of a group-decision session: the
// status state machine, the participant roster, and everything stored under
// a room code.
package session

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/victornm/quickpick/internal/domain"
	"github.com/victornm/quickpick/internal/errors"
	"github.com/victornm/quickpick/internal/event"
	"github.com/victornm/quickpick/internal/roomcode"
	"github.com/victornm/quickpick/internal/vote"
)

const (
	// MaxParticipants caps the roster size, host included.
	MaxParticipants = 8

	// SessionTTL is how long a session lives after creation.
	SessionTTL = 60 * time.Minute

	// How often Subscribe delivers snapshots.
	defaultPollInterval = time.Second

	// How often Create retries a colliding room code before giving up.
	maxCodeAttempts = 5
)

type Config struct {
	Store        Store
	EventBus     *event.Bus
	PollInterval time.Duration
}

type Service struct {
	store        Store
	eb           *event.Bus
	pollInterval time.Duration
}

func NewService(c Config) *Service {
	s := &Service{
		store:        c.Store,
		eb:           c.EventBus,
		pollInterval: c.PollInterval,
	}
	if s.pollInterval <= 0 {
		s.pollInterval = defaultPollInterval
	}
	return s
}

// Create starts a new session with the given host. Room-code collisions
// against live sessions are retried with a fresh code.
func (s *Service) Create(ctx context.Context, hostName string) (*domain.Session, error) {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		return nil, errors.InvalidArgument("host name is required")
	}

	now := time.Now()
	host := domain.Participant{
		ID:       roomcode.NewParticipantID(),
		Name:     hostName,
		IsHost:   true,
		JoinedAt: now,
	}

	for i := 0; i < maxCodeAttempts; i++ {
		sess := &domain.Session{
			ID:           roomcode.NewSessionID(),
			RoomCode:     roomcode.Generate(),
			HostID:       host.ID,
			Status:       domain.StatusWaiting,
			Participants: []domain.Participant{host},
			CreatedAt:    now,
			ExpiresAt:    now.Add(SessionTTL),
		}

		err := s.store.Create(ctx, sess)
		if stderrors.Is(err, ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, errors.Internal(err)
		}

		s.publishUpdated(ctx, sess)
		return sess, nil
	}

	return nil, errors.New(errors.CodeInternal,
		errors.WithMessagef("could not allocate a free room code"))
}

// Get looks a session up by room code, case-insensitively. Expired sessions
// behave as not-found.
func (s *Service) Get(ctx context.Context, code string) (*domain.Session, error) {
	code, err := s.normalize(code)
	if err != nil {
		return nil, err
	}

	sess, err := s.store.Get(ctx, code)
	if stderrors.Is(err, ErrNotFound) {
		return nil, errors.NotFound("session %s not found", code)
	}
	if err != nil {
		return nil, errors.Internal(err)
	}

	return sess, nil
}

// Join adds a participant to a waiting, non-full session and returns the
// updated session plus the new participant.
func (s *Service) Join(ctx context.Context, code, name string) (*domain.Session, *domain.Participant, error) {
	code, err := s.normalize(code)
	if err != nil {
		return nil, nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, errors.InvalidArgument("participant name is required")
	}

	participant := domain.Participant{
		ID:       roomcode.NewParticipantID(),
		Name:     name,
		JoinedAt: time.Now(),
	}

	sess, err := s.update(ctx, code, func(sess *domain.Session) error {
		if sess.Status != domain.StatusWaiting {
			return errors.New(errors.CodeFailedPrecondition,
				errors.WithMessagef("session %s has already started", code))
		}
		if len(sess.Participants) >= MaxParticipants {
			return errors.New(errors.CodeResourceExhausted,
				errors.WithMessagef("session %s is full", code))
		}

		sess.Participants = append(sess.Participants, participant)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return sess, &participant, nil
}

// Leave removes a participant. It is a no-op when the session or the
// participant does not exist. When the host leaves, the whole session is
// deleted.
func (s *Service) Leave(ctx context.Context, code, participantID string) error {
	code, err := s.normalize(code)
	if err != nil {
		return err
	}

	sess, err := s.store.Get(ctx, code)
	if stderrors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Internal(err)
	}

	p := sess.FindParticipant(participantID)
	if p == nil {
		return nil
	}

	if p.IsHost {
		if err := s.store.Delete(ctx, code); err != nil {
			return errors.Internal(err)
		}
		s.publish(ctx, domain.EventSessionEnded{RoomCode: code})
		return nil
	}

	_, err = s.update(ctx, code, func(sess *domain.Session) error {
		kept := sess.Participants[:0]
		for _, q := range sess.Participants {
			if q.ID != participantID {
				kept = append(kept, q)
			}
		}
		sess.Participants = kept
		return nil
	})
	if errors.IsCode(err, errors.CodeNotFound) {
		return nil
	}
	return err
}

// SetStatus moves the session to the given status. Backward transitions are
// rejected; the lifecycle is strictly forward.
func (s *Service) SetStatus(ctx context.Context, code string, status domain.Status) (*domain.Session, error) {
	code, err := s.normalize(code)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, errors.InvalidArgument("unknown status %q", status)
	}

	return s.update(ctx, code, func(sess *domain.Session) error {
		if !sess.Status.CanTransitionTo(status) {
			return errors.InvalidArgument("cannot transition from %s to %s", sess.Status, status)
		}
		sess.Status = status
		return nil
	})
}

// SubmitPreferences records a participant's selections, replacing any
// previous submission.
func (s *Service) SubmitPreferences(ctx context.Context, code, participantID string, prefs domain.Preferences) error {
	code, err := s.normalize(code)
	if err != nil {
		return err
	}
	if !prefs.Valid() {
		return errors.InvalidArgument("incomplete preferences")
	}

	_, err = s.update(ctx, code, func(sess *domain.Session) error {
		p := sess.FindParticipant(participantID)
		if p == nil {
			return errors.NotFound("participant %s not found in session %s", participantID, code)
		}

		p.Preferences = &prefs
		p.HasPrefs = true
		return nil
	})
	return err
}

// AllPreferencesSubmitted reports whether every participant has submitted.
// A missing session yields false, not an error.
func (s *Service) AllPreferencesSubmitted(ctx context.Context, code string) (bool, error) {
	sess, err := s.Get(ctx, code)
	if errors.IsCode(err, errors.CodeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	for _, p := range sess.Participants {
		if !p.HasPrefs {
			return false, nil
		}
	}
	return true, nil
}

// SetRecommendations stores the shortlist and moves the session to voting.
func (s *Service) SetRecommendations(ctx context.Context, code string, recs []domain.Recommendation) (*domain.Session, error) {
	code, err := s.normalize(code)
	if err != nil {
		return nil, err
	}

	sess, err := s.update(ctx, code, func(sess *domain.Session) error {
		if !sess.Status.CanTransitionTo(domain.StatusVoting) {
			return errors.InvalidArgument("cannot start voting from status %s", sess.Status)
		}
		sess.Recommendations = recs
		sess.Status = domain.StatusVoting
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventRecommendationsReady{Session: *sess})
	return sess, nil
}

// SubmitVotes appends one participant's ballot to the session's vote list.
// Ballots accumulate; nothing is overwritten.
func (s *Service) SubmitVotes(ctx context.Context, code string, votes []domain.Vote) error {
	code, err := s.normalize(code)
	if err != nil {
		return err
	}
	if !vote.ValidateBallot(votes) {
		return errors.InvalidArgument("ballot must rank each recommendation at most once with ranks 1..%d", vote.MaxRank)
	}

	now := time.Now()
	for i := range votes {
		if votes[i].ID == "" {
			votes[i].ID = uuid.NewString()
		}
		if votes[i].CastAt.IsZero() {
			votes[i].CastAt = now
		}
	}

	_, err = s.update(ctx, code, func(sess *domain.Session) error {
		sess.Votes = append(sess.Votes, votes...)
		return nil
	})
	return err
}

// SetWinner records the winning recommendation and completes the session.
func (s *Service) SetWinner(ctx context.Context, code string, winner domain.Recommendation) (*domain.Session, error) {
	code, err := s.normalize(code)
	if err != nil {
		return nil, err
	}

	sess, err := s.update(ctx, code, func(sess *domain.Session) error {
		sess.Winner = &winner
		sess.Status = domain.StatusComplete
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventWinnerChosen{Session: *sess})
	return sess, nil
}

// update wraps Store.Update, mapping store errors to coded ones and
// publishing the post-mutation snapshot.
func (s *Service) update(ctx context.Context, code string, fn func(*domain.Session) error) (*domain.Session, error) {
	sess, err := s.store.Update(ctx, code, fn)
	if stderrors.Is(err, ErrNotFound) {
		return nil, errors.NotFound("session %s not found", code)
	}
	if err != nil {
		return nil, errors.Convert(err)
	}

	s.publishUpdated(ctx, sess)
	return sess, nil
}

func (s *Service) normalize(code string) (string, error) {
	if !roomcode.IsValid(code) {
		return "", errors.InvalidArgument("malformed room code %q", code)
	}
	return roomcode.Normalize(code), nil
}

func (s *Service) publishUpdated(ctx context.Context, sess *domain.Session) {
	s.publish(ctx, domain.EventSessionUpdated{Session: *sess})
}

func (s *Service) publish(ctx context.Context, e event.Event) {
	if s.eb != nil {
		s.eb.Publish(ctx, e)
	}
}
