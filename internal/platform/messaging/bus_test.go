package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	contractsv1 "questboard/contracts/gen/events/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func envelope(id string) contractsv1.Envelope {
	return contractsv1.Envelope{
		EventID:       id,
		EventType:     "submission.decided",
		OccurredAt:    time.Unix(1700000000, 0).UTC(),
		SourceService: "submission-service",
		SchemaVersion: 1,
		Data:          json.RawMessage(`{"submission_id":"s-1"}`),
	}
}

func TestBusDeliversOncePerConsumerGroup(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	var mu sync.Mutex
	received := map[string][]string{}
	var wg sync.WaitGroup
	wg.Add(2)
	record := func(group string) func(context.Context, contractsv1.Envelope) error {
		return func(_ context.Context, event contractsv1.Envelope) error {
			mu.Lock()
			received[group] = append(received[group], event.EventID)
			mu.Unlock()
			wg.Done()
			return nil
		}
	}

	ctx := context.Background()
	require.NoError(t, bus.Subscribe(ctx, "submission.decided", "audit", record("audit")))
	require.NoError(t, bus.Subscribe(ctx, "submission.decided", "stats", record("stats")))
	require.NoError(t, bus.Publish(ctx, "submission.decided", envelope("evt-1")))

	waitOrFail(t, &wg)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"evt-1"}, received["audit"])
	assert.Equal(t, []string{"evt-1"}, received["stats"])
}

func TestBusIgnoresOtherTopics(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	calls := make(chan string, 1)
	require.NoError(t, bus.Subscribe(context.Background(), "submission.created", "audit", func(_ context.Context, event contractsv1.Envelope) error {
		calls <- event.EventID
		return nil
	}))
	require.NoError(t, bus.Publish(context.Background(), "submission.decided", envelope("evt-2")))

	select {
	case id := <-calls:
		t.Fatalf("unexpected delivery of %s", id)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusStopsConsumerOnContextCancel(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Subscribe(ctx, "submission.decided", "audit", func(context.Context, contractsv1.Envelope) error {
		return nil
	}))
	cancel()

	require.Eventually(t, func() bool {
		bus.mu.RLock()
		defer bus.mu.RUnlock()
		return len(bus.groups) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestBusRejectsUseAfterClose(t *testing.T) {
	bus := NewBus(nil)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	err := bus.Publish(context.Background(), "submission.decided", envelope("evt-3"))
	assert.ErrorIs(t, err, ErrBusClosed)
	err = bus.Subscribe(context.Background(), "submission.decided", "audit", func(context.Context, contractsv1.Envelope) error { return nil })
	assert.ErrorIs(t, err, ErrBusClosed)
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}
