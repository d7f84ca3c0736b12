package event_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victornm/quickpick/internal/event"
)

type testEvent struct {
	name string
}

func (e testEvent) Name() string { return e.name }

func TestPublish(t *testing.T) {
	b := event.NewBus()

	var calls int32
	b.Subscribe("session.updated", func(_ context.Context, e event.Event) error {
		assert.Equal(t, "session.updated", e.Name())
		atomic.AddInt32(&calls, 1)
		return nil
	})
	b.Subscribe("session.updated", func(context.Context, event.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	b.Publish(context.Background(), testEvent{name: "session.updated"})
	b.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPublish_NoSubscribers(t *testing.T) {
	b := event.NewBus()

	b.Publish(context.Background(), testEvent{name: "nobody.cares"})
	b.Stop()
}

func TestPublish_PanicIsolated(t *testing.T) {
	b := event.NewBus()

	var called int32
	b.Subscribe("boom", func(context.Context, event.Event) error {
		panic("handler blew up")
	})
	b.Subscribe("boom", func(context.Context, event.Event) error {
		atomic.AddInt32(&called, 1)
		return nil
	})

	b.Publish(context.Background(), testEvent{name: "boom"})
	b.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&called))
}

func TestPublish_DetachedFromCaller(t *testing.T) {
	b := event.NewBus()

	done := make(chan struct{})
	b.Subscribe("detached", func(ctx context.Context, _ event.Event) error {
		defer close(done)

		select {
		case <-ctx.Done():
			t.Error("handler context cancelled with the caller's")
		case <-time.After(20 * time.Millisecond):
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	b.Publish(ctx, testEvent{name: "detached"})
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}
	b.Stop()
}

func TestWithPoolSize(t *testing.T) {
	b := event.NewBus(event.WithPoolSize(1))

	var (
		mu      sync.Mutex
		running int
		peak    int
	)
	handler := func(context.Context, event.Event) error {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		running--
		mu.Unlock()
		return nil
	}

	b.Subscribe("work", handler)
	for i := 0; i < 5; i++ {
		b.Publish(context.Background(), testEvent{name: "work"})
	}
	b.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, peak)
}
