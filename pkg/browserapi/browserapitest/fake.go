// Package browserapitest provides deterministic in-memory implementations of
// the browserapi contracts for tests and the reference harness.
package browserapitest

import (
	"context"
	"fmt"
	"sync"

	"github.com/pagescope/pagescope/pkg/browserapi"
)

// FakeTrack is an in-memory media track.
type FakeTrack struct {
	TrackID   string
	TrackKind string // "video" or "audio"

	mu      sync.Mutex
	stopped bool
	onEnded []func()
}

// ID implements browserapi.MediaTrack.
func (t *FakeTrack) ID() string { return t.TrackID }

// Kind implements browserapi.MediaTrack.
func (t *FakeTrack) Kind() string { return t.TrackKind }

// Stop marks the track stopped. Like the platform, an explicit stop does not
// fire the ended handlers.
func (t *FakeTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// OnEnded registers an ended handler.
func (t *FakeTrack) OnEnded(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEnded = append(t.onEnded, fn)
}

// Stopped reports whether Stop was called.
func (t *FakeTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// FireEnded invokes all registered ended handlers, simulating the
// environment ending the track (device unplugged, permission revoked).
func (t *FakeTrack) FireEnded() {
	t.mu.Lock()
	handlers := append([]func(){}, t.onEnded...)
	t.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

// FakeStream is an in-memory media stream.
type FakeStream struct {
	StreamID   string
	FakeTracks []*FakeTrack
}

// ID implements browserapi.MediaStream.
func (s *FakeStream) ID() string { return s.StreamID }

// Tracks implements browserapi.MediaStream.
func (s *FakeStream) Tracks() []browserapi.MediaTrack {
	tracks := make([]browserapi.MediaTrack, len(s.FakeTracks))
	for i, t := range s.FakeTracks {
		tracks[i] = t
	}
	return tracks
}

// FakeMediaDevices grants a fresh stream per request, or fails with Err.
type FakeMediaDevices struct {
	Err error // non-nil means every request is denied

	mu       sync.Mutex
	requests int
	streams  []*FakeStream
}

// GetUserMedia implements browserapi.MediaDevices.
func (d *FakeMediaDevices) GetUserMedia(ctx context.Context, constraints browserapi.MediaConstraints) (browserapi.MediaStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.requests++
	if d.Err != nil {
		return nil, d.Err
	}

	stream := &FakeStream{StreamID: fmt.Sprintf("stream-%d", d.requests)}
	if constraints.WantsVideo() {
		stream.FakeTracks = append(stream.FakeTracks, &FakeTrack{
			TrackID:   fmt.Sprintf("video-%d", d.requests),
			TrackKind: "video",
		})
	}
	if constraints.WantsAudio() {
		stream.FakeTracks = append(stream.FakeTracks, &FakeTrack{
			TrackID:   fmt.Sprintf("audio-%d", d.requests),
			TrackKind: "audio",
		})
	}

	d.streams = append(d.streams, stream)
	return stream, nil
}

// Requests reports how many grants were attempted.
func (d *FakeMediaDevices) Requests() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests
}

// Streams returns every stream handed out, in order.
func (d *FakeMediaDevices) Streams() []*FakeStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*FakeStream{}, d.streams...)
}

// FakeGeolocation delivers positions on demand via PushUpdate.
type FakeGeolocation struct {
	Position browserapi.Position // returned by one-shot queries
	Err      error               // non-nil means every query fails

	mu      sync.Mutex
	nextID  int64
	watches map[int64]func(browserapi.Position)
	cleared []int64
}

// GetCurrentPosition implements browserapi.Geolocation.
func (g *FakeGeolocation) GetCurrentPosition(success func(browserapi.Position), failure func(error), opts browserapi.PositionOptions) {
	if g.Err != nil {
		failure(g.Err)
		return
	}
	success(g.Position)
}

// WatchPosition implements browserapi.Geolocation. Updates are delivered
// only through PushUpdate.
func (g *FakeGeolocation) WatchPosition(success func(browserapi.Position), failure func(error), opts browserapi.PositionOptions) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.watches == nil {
		g.watches = make(map[int64]func(browserapi.Position))
	}
	g.nextID++
	g.watches[g.nextID] = success
	return g.nextID
}

// ClearWatch implements browserapi.Geolocation.
func (g *FakeGeolocation) ClearWatch(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.watches, id)
	g.cleared = append(g.cleared, id)
}

// PushUpdate delivers one position to the watch's success callback.
// Unknown ids are ignored.
func (g *FakeGeolocation) PushUpdate(id int64, pos browserapi.Position) {
	g.mu.Lock()
	success := g.watches[id]
	g.mu.Unlock()
	if success != nil {
		success(pos)
	}
}

// Cleared returns the ids passed to ClearWatch, in order.
func (g *FakeGeolocation) Cleared() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int64{}, g.cleared...)
}

// FakeClipboard serves a fixed text and item set.
type FakeClipboard struct {
	Text  string
	Items []browserapi.ClipboardItem
	Err   error

	mu     sync.Mutex
	writes []string
}

// ReadText implements browserapi.Clipboard.
func (c *FakeClipboard) ReadText(ctx context.Context) (string, error) {
	if c.Err != nil {
		return "", c.Err
	}
	return c.Text, nil
}

// WriteText implements browserapi.Clipboard.
func (c *FakeClipboard) WriteText(ctx context.Context, text string) error {
	if c.Err != nil {
		return c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, text)
	return nil
}

// Read implements browserapi.Clipboard.
func (c *FakeClipboard) Read(ctx context.Context) ([]browserapi.ClipboardItem, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Items, nil
}

// Write implements browserapi.Clipboard.
func (c *FakeClipboard) Write(ctx context.Context, items []browserapi.ClipboardItem) error {
	if c.Err != nil {
		return c.Err
	}
	return nil
}

// Writes returns every text written, in order.
func (c *FakeClipboard) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.writes...)
}

// FakeNotification is a constructed fake notification.
type FakeNotification struct {
	NotificationTitle string
	closed            bool
}

// Title implements browserapi.Notification.
func (n *FakeNotification) Title() string { return n.NotificationTitle }

// Close implements browserapi.Notification.
func (n *FakeNotification) Close() { n.closed = true }

// FakeNotifications constructs fake notifications and tracks permission.
type FakeNotifications struct {
	PermissionState string // defaults to "default"
	Err             error

	mu      sync.Mutex
	created []*FakeNotification
}

// New implements browserapi.Notifications.
func (f *FakeNotifications) New(title string, opts browserapi.NotificationOptions) (browserapi.Notification, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := &FakeNotification{NotificationTitle: title}
	f.created = append(f.created, n)
	return n, nil
}

// Permission implements browserapi.Notifications.
func (f *FakeNotifications) Permission() string {
	if f.PermissionState == "" {
		return "default"
	}
	return f.PermissionState
}

// RequestPermission implements browserapi.Notifications.
func (f *FakeNotifications) RequestPermission(ctx context.Context) (string, error) {
	return f.Permission(), nil
}

// Created returns every notification constructed, in order.
func (f *FakeNotifications) Created() []*FakeNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeNotification{}, f.created...)
}
