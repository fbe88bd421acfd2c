// Package browserapi declares the contracts of the capability entry points
// Pagescope observes. The page environment supplies implementations; the
// monitor package returns drop-in replacements that delegate every call to
// the originals. Implementations are treated as black boxes with the
// documented signatures and nothing more.
package browserapi

import "context"

// MediaConstraints mirrors a getUserMedia constraint set. A track kind is
// requested either as a plain boolean or as a parameter object; the two forms
// are distinguished in emitted context but treated identically otherwise.
type MediaConstraints struct {
	Video     bool
	Audio     bool
	VideoOpts map[string]any // non-nil means the video constraint was an object
	AudioOpts map[string]any // non-nil means the audio constraint was an object
}

// WantsVideo reports whether the constraints request a video track.
func (c MediaConstraints) WantsVideo() bool { return c.Video || c.VideoOpts != nil }

// WantsAudio reports whether the constraints request an audio track.
func (c MediaConstraints) WantsAudio() bool { return c.Audio || c.AudioOpts != nil }

// Advanced reports whether any requested kind used the object form.
func (c MediaConstraints) Advanced() bool { return c.VideoOpts != nil || c.AudioOpts != nil }

// MediaTrack is a single audio or video track of an acquired stream.
type MediaTrack interface {
	// ID identifies the track.
	ID() string

	// Kind is "video" or "audio".
	Kind() string

	// Stop ends the track.
	Stop()

	// OnEnded registers fn to run when the track ends for reasons other
	// than an explicit Stop (device unplugged, permission revoked).
	OnEnded(fn func())
}

// MediaStream is an acquired media stream.
type MediaStream interface {
	ID() string
	Tracks() []MediaTrack
}

// MediaDevices is the media acquisition entry point.
type MediaDevices interface {
	GetUserMedia(ctx context.Context, constraints MediaConstraints) (MediaStream, error)
}

// Position is one geolocation fix.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // meters
}

// PositionOptions carries the standard geolocation options.
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            int // milliseconds, 0 means none
	MaximumAge         int // milliseconds
}

// Geolocation is the location entry point. Callbacks are invoked
// asynchronously by the implementation; success may fire repeatedly for a
// watch. WatchPosition returns an opaque id consumed by ClearWatch.
type Geolocation interface {
	GetCurrentPosition(success func(Position), failure func(error), opts PositionOptions)
	WatchPosition(success func(Position), failure func(error), opts PositionOptions) int64
	ClearWatch(id int64)
}

// ClipboardItem is one structured clipboard entry.
type ClipboardItem struct {
	Types []string
	Data  map[string][]byte
}

// Clipboard is the clipboard entry point, both text and structured forms.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
	Read(ctx context.Context) ([]ClipboardItem, error)
	Write(ctx context.Context, items []ClipboardItem) error
}

// NotificationOptions mirrors the standard notification constructor options.
type NotificationOptions struct {
	Body string
	Icon string
	Tag  string
}

// Notification is a constructed notification handle.
type Notification interface {
	Title() string
	Close()
}

// Notifications is the notification entry point. Permission and
// RequestPermission are passthroughs the monitor never alters.
type Notifications interface {
	New(title string, opts NotificationOptions) (Notification, error)
	Permission() string
	RequestPermission(ctx context.Context) (string, error)
}
