package sink

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/pagescope/pagescope/pkg/capability"
)

var bucketEvents = []byte("events")

// ArchiveSink persists delivered events in a local bbolt database. This is a
// host-side backend for the observer that wants history; the interception
// core itself never persists anything.
type ArchiveSink struct {
	db *bbolt.DB
}

// NewArchiveSink opens (or creates) the archive database under dir.
func NewArchiveSink(dir string) (*ArchiveSink, error) {
	dbPath := filepath.Join(dir, "pagescope.db")

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEvents)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive bucket: %w", err)
	}

	return &ArchiveSink{db: db}, nil
}

// Deliver appends the event under a monotonically increasing sequence key.
func (s *ArchiveSink) Deliver(ctx context.Context, event capability.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketEvents)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return bucket.Put(key, data)
	})
}

// Events returns all archived events in insertion order.
func (s *ArchiveSink) Events() ([]capability.Event, error) {
	var events []capability.Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEvents).ForEach(func(_, v []byte) error {
			var event capability.Event
			if err := unmarshalEvent(v, &event); err != nil {
				return err
			}
			events = append(events, event)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return events, nil
}

// Len reports how many events are archived.
func (s *ArchiveSink) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketEvents).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the underlying database.
func (s *ArchiveSink) Close() error {
	return s.db.Close()
}

// unmarshalEvent decodes a stored event, leaving the context raw until the
// capability is known so the concrete payload type can be chosen.
func unmarshalEvent(data []byte, event *capability.Event) error {
	var wire struct {
		Capability capability.Capability `json:"capability"`
		Action     capability.Action     `json:"action"`
		Context    json.RawMessage       `json:"context,omitempty"`
		Detection  string                `json:"detection_method,omitempty"`
		Timestamp  time.Time             `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	event.Capability = wire.Capability
	event.Action = wire.Action
	event.Detection = wire.Detection
	event.Timestamp = wire.Timestamp

	if len(wire.Context) == 0 {
		return nil
	}
	payload, err := decodeContext(wire.Capability, wire.Action, wire.Context)
	if err != nil {
		return err
	}
	event.Context = payload
	return nil
}

// decodeContext picks the concrete payload type from the event's key.
func decodeContext(kind capability.Capability, action capability.Action, raw json.RawMessage) (capability.Context, error) {
	switch kind {
	case capability.Camera, capability.Microphone:
		var c capability.MediaContext
		return c, json.Unmarshal(raw, &c)
	case capability.Location:
		if action == capability.ActionAccessed {
			var c capability.PositionContext
			return c, json.Unmarshal(raw, &c)
		}
		var c capability.WatchContext
		return c, json.Unmarshal(raw, &c)
	case capability.ClipboardRead, capability.ClipboardWrite:
		var c capability.ClipboardContext
		return c, json.Unmarshal(raw, &c)
	case capability.Notifications:
		var c capability.NotificationContext
		return c, json.Unmarshal(raw, &c)
	}
	return nil, nil
}
