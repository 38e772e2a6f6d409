package events_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-oauth2-core/events"
	"github.com/stretchr/testify/require"
)

type renamed struct{ ID string }

func (renamed) EventName() string { return "renamed" }

type removed struct{ ID string }

func (removed) EventName() string { return "removed" }

func TestRecorder(t *testing.T) {
	var r events.Recorder

	r.Record(renamed{ID: "a"})
	r.Record(renamed{ID: "a"})
	r.Record(renamed{ID: "b"})
	r.Record(removed{ID: "a"})

	require.Equal(t, []events.Event{renamed{ID: "a"}, renamed{ID: "b"}, removed{ID: "a"}}, r.Pending())

	drained := r.Drain()
	require.Len(t, drained, 3)
	require.Empty(t, r.Pending())

	r.Record(renamed{ID: "a"})
	require.Len(t, r.Pending(), 1)
}

type tagged struct{ Tags []string }

func (tagged) EventName() string { return "tagged" }

func TestRecorderEventsWithSlices(t *testing.T) {
	var r events.Recorder

	require.NotPanics(t, func() {
		r.Record(tagged{Tags: []string{"a", "b"}})
		r.Record(tagged{Tags: []string{"a", "b"}})
	})
	r.Record(tagged{Tags: []string{"a"}})
	require.Equal(t, []events.Event{tagged{Tags: []string{"a", "b"}}, tagged{Tags: []string{"a"}}}, r.Pending())
}

func TestPublisherFunc(t *testing.T) {
	var got []events.Event
	pub := events.PublisherFunc(func(_ context.Context, evs ...events.Event) error {
		got = append(got, evs...)
		return nil
	})
	require.NoError(t, pub.Publish(context.Background(), renamed{ID: "x"}))
	require.NoError(t, events.LogPublisher{}.Publish(context.Background(), renamed{ID: "x"}))
	require.Equal(t, []events.Event{renamed{ID: "x"}}, got)
}
