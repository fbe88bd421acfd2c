package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagescope/pagescope/pkg/browserapi"
	"github.com/pagescope/pagescope/pkg/browserapi/browserapitest"
	"github.com/pagescope/pagescope/pkg/capability"
)

func TestClipboard_ReadTextReportsLength(t *testing.T) {
	clip := &browserapitest.FakeClipboard{Text: "hello clipboard"}
	mon, capture, _ := newTestMonitor(t, Bindings{Clipboard: clip})

	text, err := mon.Clipboard().ReadText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello clipboard", text)

	events := capture.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "clipboard-read:accessed", events[0].Key())
	assert.Equal(t, capability.ClipboardContext{Length: 15, Kind: "text"}, events[0].Context)
}

func TestClipboard_StructuredReadReportsTypes(t *testing.T) {
	clip := &browserapitest.FakeClipboard{
		Items: []browserapi.ClipboardItem{
			{Types: []string{"text/html", "text/plain"}},
			{Types: []string{"image/png", "text/plain"}},
		},
	}
	mon, capture, _ := newTestMonitor(t, Bindings{Clipboard: clip})

	items, err := mon.Clipboard().Read(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	events := capture.Events()
	require.Len(t, events, 1)
	clipCtx := events[0].Context.(capability.ClipboardContext)
	assert.Equal(t, []string{"image/png", "text/html", "text/plain"}, clipCtx.Types)
	assert.Equal(t, "items", clipCtx.Kind)
}

func TestClipboard_WriteTextReportsLength(t *testing.T) {
	clip := &browserapitest.FakeClipboard{}
	mon, capture, _ := newTestMonitor(t, Bindings{Clipboard: clip})

	require.NoError(t, mon.Clipboard().WriteText(context.Background(), "copied"))
	assert.Equal(t, []string{"copied"}, clip.Writes(), "the write reaches the real clipboard")

	events := capture.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "clipboard-write:accessed", events[0].Key())
	assert.Equal(t, capability.ClipboardContext{Length: 6, Kind: "text"}, events[0].Context)
}

func TestClipboard_ReadAndWriteAreDistinctKeys(t *testing.T) {
	clip := &browserapitest.FakeClipboard{Text: "x"}
	mon, capture, _ := newTestMonitor(t, Bindings{Clipboard: clip})

	_, err := mon.Clipboard().ReadText(context.Background())
	require.NoError(t, err)
	require.NoError(t, mon.Clipboard().WriteText(context.Background(), "y"))

	// Same action, different capabilities: both admit inside one window.
	assert.Equal(t, 1, capture.CountKey("clipboard-read:accessed"))
	assert.Equal(t, 1, capture.CountKey("clipboard-write:accessed"))
}

func TestClipboard_FailurePassesThroughUnobserved(t *testing.T) {
	denied := errors.New("NotAllowedError")
	clip := &browserapitest.FakeClipboard{Err: denied}
	mon, capture, _ := newTestMonitor(t, Bindings{Clipboard: clip})

	_, err := mon.Clipboard().ReadText(context.Background())
	assert.ErrorIs(t, err, denied)

	err = mon.Clipboard().WriteText(context.Background(), "z")
	assert.ErrorIs(t, err, denied)

	assert.Empty(t, capture.Events())
}

func TestClipboard_RepeatReadsDebounced(t *testing.T) {
	clip := &browserapitest.FakeClipboard{Text: "polling"}
	mon, capture, clock := newTestMonitor(t, Bindings{Clipboard: clip})

	// A page polling the clipboard produces one emission per window.
	for i := 0; i < 5; i++ {
		_, err := mon.Clipboard().ReadText(context.Background())
		require.NoError(t, err)
		clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 1, capture.CountKey("clipboard-read:accessed"))

	clock.Advance(2 * time.Second)
	_, err := mon.Clipboard().ReadText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, capture.CountKey("clipboard-read:accessed"))
}
