// Package events holds domain events raised by aggregate mutators until the
// surrounding service publishes them after a successful transaction.
package events

import (
	"context"
	"reflect"

	"github.com/rs/zerolog/log"
)

// Event describes something that happened to an aggregate.
type Event interface {
	EventName() string
}

// Recorder is an append-only list of pending events. Embed it in an aggregate.
// Equal events are recorded once.
type Recorder struct {
	pending []Event
}

// Record appends e unless an equal event is already pending.
func (r *Recorder) Record(e Event) {
	for _, p := range r.pending {
		if reflect.DeepEqual(p, e) {
			return
		}
	}
	r.pending = append(r.pending, e)
}

// Pending returns a copy of the events not yet drained.
func (r *Recorder) Pending() []Event {
	return append([]Event(nil), r.pending...)
}

// Drain returns the pending events and clears the list.
func (r *Recorder) Drain() []Event {
	drained := r.pending
	r.pending = nil
	return drained
}

// Publisher delivers drained events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, events ...Event) error

func (f PublisherFunc) Publish(ctx context.Context, events ...Event) error {
	return f(ctx, events...)
}

// LogPublisher writes every event to the global zerolog logger.
type LogPublisher struct{}

var _ Publisher = LogPublisher{}

func (LogPublisher) Publish(_ context.Context, events ...Event) error {
	for _, e := range events {
		log.Info().Str("event", e.EventName()).Interface("payload", e).Msg("domain event")
	}
	return nil
}
