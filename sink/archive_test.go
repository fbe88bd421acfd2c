package sink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagescope/pagescope/pkg/capability"
)

func TestArchiveSink_AppendAndRead(t *testing.T) {
	s, err := NewArchiveSink(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	first := capability.Event{
		Capability: capability.Camera,
		Action:     capability.ActionActiveUse,
		Context:    capability.MediaContext{Constraints: capability.ConstraintBasic, RequestID: "req-1"},
		Detection:  "api-interception",
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	second := capability.Event{
		Capability: capability.Location,
		Action:     capability.ActionTrackingStopped,
		Context:    capability.WatchContext{WatchID: 3, TotalUpdates: 25, Elapsed: 25 * time.Second},
		Detection:  "api-interception",
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC),
	}

	require.NoError(t, s.Deliver(context.Background(), first))
	require.NoError(t, s.Deliver(context.Background(), second))

	events, err := s.Events()
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, capability.Camera, events[0].Capability)
	assert.Equal(t, first.Context, events[0].Context, "typed context survives the round trip")
	assert.True(t, first.Timestamp.Equal(events[0].Timestamp))

	watchCtx, ok := events[1].Context.(capability.WatchContext)
	require.True(t, ok)
	assert.Equal(t, 25, watchCtx.TotalUpdates)
	assert.Equal(t, 25*time.Second, watchCtx.Elapsed)
}

func TestArchiveSink_PreservesInsertionOrder(t *testing.T) {
	s, err := NewArchiveSink(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	actions := []capability.Action{
		capability.ActionTrackingStarted,
		capability.ActionTrackingActive,
		capability.ActionTrackingStopped,
	}
	for _, action := range actions {
		require.NoError(t, s.Deliver(context.Background(), capability.Event{
			Capability: capability.Location,
			Action:     action,
		}))
	}

	events, err := s.Events()
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, action := range actions {
		assert.Equal(t, action, events[i].Action)
	}

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestArchiveSink_EmptyArchive(t *testing.T) {
	s, err := NewArchiveSink(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	events, err := s.Events()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestArchiveSink_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewArchiveSink(dir)
	require.NoError(t, err)
	require.NoError(t, s.Deliver(context.Background(), capability.Event{
		Capability: capability.ClipboardRead,
		Action:     capability.ActionAccessed,
		Context:    capability.ClipboardContext{Length: 42, Kind: "text"},
	}))
	require.NoError(t, s.Close())

	reopened, err := NewArchiveSink(dir)
	require.NoError(t, err)
	defer reopened.Close()

	events, err := reopened.Events()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, capability.ClipboardContext{Length: 42, Kind: "text"}, events[0].Context)
}
