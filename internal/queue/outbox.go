package queue

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/ride-booking/internal/logging"
)

// EventPublisher sends one booking event to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev BookingCreatedEvent) error
}

// ErrOutboxFull is returned by Outbox.Publish when the buffer has no room.
var ErrOutboxFull = errors.New("booking event outbox full")

// Outbox buffers booking events in memory and publishes them from a single
// goroutine, so a slow or unreachable broker never holds up the caller.
// Publish only enqueues; Run does the sending.
type Outbox struct {
	next    EventPublisher
	events  chan BookingCreatedEvent
	timeout time.Duration
}

// NewOutbox wraps next with a buffer of size events.  timeout bounds each
// publish attempt.
func NewOutbox(next EventPublisher, size int, timeout time.Duration) *Outbox {
	if size <= 0 {
		size = 256
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Outbox{next: next, events: make(chan BookingCreatedEvent, size), timeout: timeout}
}

// Publish enqueues ev without blocking.
func (o *Outbox) Publish(_ context.Context, ev BookingCreatedEvent) error {
	select {
	case o.events <- ev:
		return nil
	default:
		return ErrOutboxFull
	}
}

// Run publishes queued events until ctx is done, then flushes whatever is
// still buffered.
func (o *Outbox) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			o.flush()
			return
		case ev := <-o.events:
			o.send(ctx, ev)
		}
	}
}

func (o *Outbox) flush() {
	for {
		select {
		case ev := <-o.events:
			o.send(context.Background(), ev)
		default:
			return
		}
	}
}

func (o *Outbox) send(ctx context.Context, ev BookingCreatedEvent) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	if err := o.next.Publish(ctx, ev); err != nil {
		logging.L().Error().Err(err).Uint64("booking_id", ev.BookingID).Msg("booking event publish failed")
	}
}
