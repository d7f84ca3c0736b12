package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/victornm/quickpick/internal/domain"
)

const maxConcurrentPublishes = 100

// Redis is the pubsub side of the notification channel.
type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type notification struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// PublishSessionUpdated pushes the fresh session snapshot to the room
// channel and to each participant's private channel, so clients waiting on
// pubsub see updates without polling.
func (a *API) PublishSessionUpdated(ctx context.Context, e domain.EventSessionUpdated) error {
	sess := e.Session

	if err := a.publishNotification(ctx, a.roomChannel(sess.RoomCode), e.Name(), sess); err != nil {
		return err
	}

	var eg errgroup.Group
	eg.SetLimit(maxConcurrentPublishes)

	for _, p := range sess.Participants {
		p := p
		eg.Go(func() error {
			return a.publishNotification(ctx, a.participantChannel(p.ID), e.Name(), sess)
		})
	}

	return eg.Wait()
}

func (a *API) publishNotification(ctx context.Context, channel, event string, data any) error {
	if a.redis == nil {
		return nil
	}

	n := notification{
		Event: event,
		Data:  data,
	}

	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s: %v", event, err)
	}

	return a.redis.Publish(ctx, channel, b).Err()
}

func (a *API) roomChannel(roomCode string) string {
	return fmt.Sprintf("%s:room:%s", a.prefix, roomCode)
}

func (a *API) participantChannel(participantID string) string {
	return fmt.Sprintf("%s:participant:%s", a.prefix, participantID)
}
