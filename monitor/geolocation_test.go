package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagescope/pagescope/pkg/browserapi"
	"github.com/pagescope/pagescope/pkg/browserapi/browserapitest"
	"github.com/pagescope/pagescope/pkg/capability"
)

func TestGeolocation_OneShotReportsAccuracy(t *testing.T) {
	geo := &browserapitest.FakeGeolocation{
		Position: browserapi.Position{Latitude: 60.17, Longitude: 24.94, Accuracy: 15},
	}
	mon, capture, _ := newTestMonitor(t, Bindings{Geolocation: geo})

	var got browserapi.Position
	mon.Geolocation().GetCurrentPosition(
		func(pos browserapi.Position) { got = pos },
		func(err error) { t.Errorf("unexpected failure: %v", err) },
		browserapi.PositionOptions{},
	)

	assert.Equal(t, 15.0, got.Accuracy, "the fix reaches the caller unchanged")

	events := capture.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "location:accessed", events[0].Key())
	assert.Equal(t, capability.PositionContext{Accuracy: 15}, events[0].Context)
}

func TestGeolocation_OneShotErrorPassesThrough(t *testing.T) {
	failed := errors.New("PositionUnavailable")
	geo := &browserapitest.FakeGeolocation{Err: failed}
	mon, capture, _ := newTestMonitor(t, Bindings{Geolocation: geo})

	var got error
	mon.Geolocation().GetCurrentPosition(
		func(browserapi.Position) { t.Error("unexpected success") },
		func(err error) { got = err },
		browserapi.PositionOptions{},
	)

	assert.ErrorIs(t, got, failed)
	assert.Empty(t, capture.Events(), "errors pass through unobserved")
}

func TestGeolocation_WatchCounting(t *testing.T) {
	geo := &browserapitest.FakeGeolocation{}
	mon, capture, clock := newTestMonitor(t, Bindings{Geolocation: geo})

	delivered := 0
	id := mon.Geolocation().WatchPosition(
		func(browserapi.Position) { delivered++ },
		func(error) {},
		browserapi.PositionOptions{},
	)

	// 25 updates spaced a second apart: emissions for update 1
	// (tracking-started) and updates 10 and 20 (tracking-active).
	for i := 0; i < 25; i++ {
		geo.PushUpdate(id, browserapi.Position{Accuracy: 20})
		clock.Advance(time.Second)
	}

	assert.Equal(t, 25, delivered, "every update reaches the caller")
	assert.Equal(t, 1, capture.CountKey("location:tracking-started"))
	assert.Equal(t, 2, capture.CountKey("location:tracking-active"))

	mon.Geolocation().ClearWatch(id)

	require.Equal(t, 1, capture.CountKey("location:tracking-stopped"))
	events := capture.Events()
	final := events[len(events)-1].Context.(capability.WatchContext)
	assert.Equal(t, 25, final.TotalUpdates)
	assert.Equal(t, id, final.WatchID)
	assert.Equal(t, 25*time.Second, final.Elapsed)
}

func TestGeolocation_TrackingActiveCarriesRunningCount(t *testing.T) {
	geo := &browserapitest.FakeGeolocation{}
	mon, capture, clock := newTestMonitor(t, Bindings{Geolocation: geo})

	id := mon.Geolocation().WatchPosition(func(browserapi.Position) {}, func(error) {}, browserapi.PositionOptions{})

	for i := 0; i < 10; i++ {
		geo.PushUpdate(id, browserapi.Position{Accuracy: 8})
		clock.Advance(time.Second)
	}

	var active capability.WatchContext
	for _, event := range capture.Events() {
		if event.Action == capability.ActionTrackingActive {
			active = event.Context.(capability.WatchContext)
		}
	}
	assert.Equal(t, 10, active.Updates)
	assert.Equal(t, 9*time.Second, active.Elapsed)
}

func TestGeolocation_ClearForwardsAndIsIdempotent(t *testing.T) {
	geo := &browserapitest.FakeGeolocation{}
	mon, capture, _ := newTestMonitor(t, Bindings{Geolocation: geo})

	id := mon.Geolocation().WatchPosition(func(browserapi.Position) {}, func(error) {}, browserapi.PositionOptions{})
	geo.PushUpdate(id, browserapi.Position{})

	mon.Geolocation().ClearWatch(id)
	mon.Geolocation().ClearWatch(id)

	assert.Equal(t, []int64{id, id}, geo.Cleared(), "every clear reaches the real implementation")
	assert.Equal(t, 1, capture.CountKey("location:tracking-stopped"), "second clear reports nothing")
}

func TestGeolocation_ClearUnknownForwardsSilently(t *testing.T) {
	geo := &browserapitest.FakeGeolocation{}
	mon, capture, _ := newTestMonitor(t, Bindings{Geolocation: geo})

	assert.NotPanics(t, func() { mon.Geolocation().ClearWatch(99) })
	assert.Equal(t, []int64{99}, geo.Cleared())
	assert.Empty(t, capture.Events())
}

func TestGeolocation_IndependentWatches(t *testing.T) {
	geo := &browserapitest.FakeGeolocation{}
	mon, capture, clock := newTestMonitor(t, Bindings{Geolocation: geo})

	first := mon.Geolocation().WatchPosition(func(browserapi.Position) {}, func(error) {}, browserapi.PositionOptions{})
	second := mon.Geolocation().WatchPosition(func(browserapi.Position) {}, func(error) {}, browserapi.PositionOptions{})
	require.NotEqual(t, first, second)

	geo.PushUpdate(first, browserapi.Position{})
	clock.Advance(3 * time.Second)
	geo.PushUpdate(second, browserapi.Position{})

	// Each watch counts its own updates; the second watch's first update
	// is its own tracking-started.
	assert.Equal(t, 2, capture.CountKey("location:tracking-started"))

	clock.Advance(3 * time.Second)
	mon.Geolocation().ClearWatch(first)
	clock.Advance(3 * time.Second)
	mon.Geolocation().ClearWatch(second)
	assert.Equal(t, 2, capture.CountKey("location:tracking-stopped"))
}
