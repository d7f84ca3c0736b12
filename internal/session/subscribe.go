package session

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/victornm/quickpick/internal/domain"
	"github.com/victornm/quickpick/internal/roomcode"
)

// Subscribe delivers session snapshots to fn on a fixed interval until the
// returned unsubscribe function is called. A vanished or expired session is
// delivered as nil, mirroring a not-found lookup. After unsubscribe returns
// no further deliveries happen, including from ticks already in flight.
func (s *Service) Subscribe(code string, fn func(*domain.Session)) (func(), error) {
	if !roomcode.IsValid(code) {
		return nil, stderrors.New("subscribe: malformed room code")
	}
	code = roomcode.Normalize(code)

	var (
		mu      sync.Mutex
		stopped bool
		once    sync.Once
		stop    = make(chan struct{})
	)

	unsubscribe := func() {
		once.Do(func() {
			mu.Lock()
			stopped = true
			mu.Unlock()
			close(stop)
		})
	}

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}

			ctx, cancel := context.WithTimeout(context.Background(), s.pollInterval)
			sess, err := s.store.Get(ctx, code)
			cancel()
			if err != nil && !stderrors.Is(err, ErrNotFound) {
				slog.Error("session: subscription poll failed",
					"room_code", code,
					"error", err,
				)
				continue
			}

			// Re-check under the lock so a tick racing unsubscribe
			// cannot deliver late.
			mu.Lock()
			if !stopped {
				fn(sess)
			}
			mu.Unlock()
		}
	}()

	return unsubscribe, nil
}
