package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/victornm/quickpick/internal/domain"
)

// How many times an optimistic transaction is retried when a concurrent
// writer touches the same room code.
const maxTxRetries = 10

// RedisStore keeps each session as a JSON payload under its room code, with
// a TTL aligned to the session's expiry. Read-modify-write sequences run as
// WATCH transactions so concurrent joins and votes on the same room code
// never lose updates.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisStore(r redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{redis: r, prefix: prefix}
}

func (s *RedisStore) Create(ctx context.Context, sess *domain.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := s.redis.SetNX(ctx, s.key(sess.RoomCode), b, ttlFor(sess, time.Now())).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return ErrCodeTaken
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, roomCode string) (*domain.Session, error) {
	b, err := s.redis.Get(ctx, s.key(roomCode)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	// Lazy expiry: the TTL normally collects the key first, but the
	// payload is authoritative.
	if sess.Expired(time.Now()) {
		_ = s.redis.Del(ctx, s.key(roomCode)).Err()
		return nil, ErrNotFound
	}

	return &sess, nil
}

func (s *RedisStore) Update(ctx context.Context, roomCode string, fn func(*domain.Session) error) (*domain.Session, error) {
	key := s.key(roomCode)

	var updated *domain.Session
	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if stderrors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}

		var sess domain.Session
		if err := json.Unmarshal(b, &sess); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}

		if sess.Expired(time.Now()) {
			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			if err != nil {
				return err
			}
			return ErrNotFound
		}

		if err := fn(&sess); err != nil {
			return err
		}

		b, err = json.Marshal(&sess)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, ttlFor(&sess, time.Now()))
			return nil
		})
		if err != nil {
			return err
		}

		updated = &sess
		return nil
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.redis.Watch(ctx, txf, key)
		if stderrors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, fmt.Errorf("update session %s: too many conflicting writers", roomCode)
}

func (s *RedisStore) Delete(ctx context.Context, roomCode string) error {
	if err := s.redis.Del(ctx, s.key(roomCode)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) key(roomCode string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, roomCode)
}
