// Package capability defines the unified capability-usage event model for Pagescope.
package capability

import "time"

// Capability identifies a sensitive browser capability surface.
type Capability string

const (
	Camera         Capability = "camera"
	Microphone     Capability = "microphone"
	Location       Capability = "location"
	ClipboardRead  Capability = "clipboard-read"
	ClipboardWrite Capability = "clipboard-write"
	Notifications  Capability = "notifications"
)

// Action describes what a capability was observed doing.
type Action string

const (
	ActionActiveUse       Action = "active-use"       // resource is now being consumed
	ActionStopped         Action = "stopped"          // ongoing consumption ended
	ActionAccessed        Action = "accessed"         // one-shot access completed
	ActionTrackingStarted Action = "tracking-started" // first update of a continuous watch
	ActionTrackingActive  Action = "tracking-active"  // watch still delivering updates
	ActionTrackingStopped Action = "tracking-stopped" // watch explicitly cleared
	ActionShown           Action = "shown"            // notification surfaced to the user
)

// Event is the unit of observation. Constructed at the moment an observation
// is admitted, immutable afterward, handed off to sinks and not retained.
type Event struct {
	Capability Capability `json:"capability"`
	Action     Action     `json:"action"`
	Context    Context    `json:"context,omitempty"`
	Detection  string     `json:"detection_method,omitempty"` // fixed tag added at publish time
	Timestamp  time.Time  `json:"timestamp"`                  // instant of emission
}

// Key returns the deduplication key for this event's capability/action pair.
func (e Event) Key() string {
	return string(e.Capability) + ":" + string(e.Action)
}

// Context is the capability-specific diagnostic payload attached to an event.
// Each capability family contributes its own concrete type instead of an open
// map, so payload shapes stay checkable.
type Context interface {
	isContext()
}

// ConstraintForm classifies how a media request expressed its constraints.
type ConstraintForm string

const (
	ConstraintBasic    ConstraintForm = "basic"    // boolean constraint (e.g. video: true)
	ConstraintAdvanced ConstraintForm = "advanced" // object constraint with parameters
)

// MediaContext accompanies camera and microphone events.
type MediaContext struct {
	Constraints ConstraintForm `json:"constraints,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	TrackID     string         `json:"track_id,omitempty"`
	Reason      string         `json:"reason,omitempty"` // for stopped: "stop" or "ended"
}

// PositionContext accompanies one-shot location events.
type PositionContext struct {
	Accuracy float64 `json:"accuracy"`
}

// WatchContext accompanies continuous location-watch events.
type WatchContext struct {
	WatchID      int64         `json:"watch_id"`
	Updates      int           `json:"updates"`
	Elapsed      time.Duration `json:"elapsed,omitempty"`
	TotalUpdates int           `json:"total_updates,omitempty"` // set on tracking-stopped
	Accuracy     float64       `json:"accuracy,omitempty"`
}

// ClipboardContext accompanies clipboard read/write events.
type ClipboardContext struct {
	Length int      `json:"length,omitempty"` // text length in bytes
	Types  []string `json:"types,omitempty"`  // content types of structured items
	Kind   string   `json:"kind"`             // "text" or "items"
}

// NotificationContext accompanies notification events. Construction of a
// notification is reported as shown even though the environment may suppress
// the actual display; that caveat is inherent to the detection point.
type NotificationContext struct {
	HasTitle bool `json:"has_title"`
	HasIcon  bool `json:"has_icon"`
	HasBody  bool `json:"has_body"`
}

func (MediaContext) isContext()        {}
func (PositionContext) isContext()     {}
func (WatchContext) isContext()        {}
func (ClipboardContext) isContext()    {}
func (NotificationContext) isContext() {}
