package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	contractsv1 "questboard/contracts/gen/events/v1"
)

var ErrBusClosed = errors.New("event bus closed")

const defaultGroupBuffer = 128

// Bus is the in-process event bus used by the outbox relay and its
// consumers. Every consumer group on a topic receives each event once;
// handlers that subscribe with the same group compete for events.
type Bus struct {
	mu     sync.RWMutex
	groups map[string]map[string]*consumerGroup
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger
}

type consumerGroup struct {
	events  chan contractsv1.Envelope
	members int
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		groups: make(map[string]map[string]*consumerGroup),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	targets := make([]chan contractsv1.Envelope, 0, len(b.groups[topic]))
	for _, group := range b.groups[topic] {
		targets = append(targets, group.events)
	}
	b.mu.RUnlock()

	for _, target := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case target <- event:
		default:
			b.logger.Warn("dropping event for slow consumer group",
				"event", "bus_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"event_id", event.EventID,
			)
		}
	}

	b.logger.Debug("event published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"consumer_groups", len(targets),
	)
	return nil
}

// Subscribe starts a consumer goroutine that runs until ctx is cancelled or
// the bus is closed.
func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	byGroup, ok := b.groups[topic]
	if !ok {
		byGroup = make(map[string]*consumerGroup)
		b.groups[topic] = byGroup
	}
	group, ok := byGroup[consumerGroup]
	if !ok {
		group = &consumerGroup{events: make(chan contractsv1.Envelope, defaultGroupBuffer)}
		byGroup[consumerGroup] = group
	}
	group.members++
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		defer b.leave(topic, consumerGroup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.done:
				return
			case event := <-group.events:
				if err := handler(ctx, event); err != nil {
					b.logger.Error("consumer handler failed",
						"event", "bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

// Close stops every consumer and waits for in-flight handlers to return.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

func (b *Bus) leave(topic string, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	byGroup := b.groups[topic]
	group, ok := byGroup[name]
	if !ok {
		return
	}
	group.members--
	if group.members > 0 {
		return
	}
	delete(byGroup, name)
	if len(byGroup) == 0 {
		delete(b.groups, topic)
	}
}
