// Package lifecycle tracks per-instance state for capabilities with a notion
// of ongoing use: live media streams and continuous location watches.
package lifecycle

import (
	"sync"

	"github.com/pagescope/pagescope/pkg/capability"
)

// ActiveRecord tracks a capability currently in use (camera or microphone).
// At most one record per capability kind is current at a time; a new grant
// overwrites tracking of the prior one.
type ActiveRecord struct {
	Kind      capability.Capability
	Handle    any    // opaque reference to the underlying resource
	RequestID string // id of the grant that produced this record
}

// ActiveSet holds the current ActiveRecord per capability kind.
// All operations tolerate absent keys; stopping an untracked kind is a no-op.
type ActiveSet struct {
	mu      sync.Mutex
	current map[capability.Capability]ActiveRecord
}

// NewActiveSet creates an empty active set.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{current: make(map[capability.Capability]ActiveRecord)}
}

// Start records kind as actively in use, replacing any prior record.
func (s *ActiveSet) Start(kind capability.Capability, handle any, requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[kind] = ActiveRecord{Kind: kind, Handle: handle, RequestID: requestID}
}

// Stop removes the record for kind. Reports whether a record existed.
func (s *ActiveSet) Stop(kind capability.Capability) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.current[kind]
	delete(s.current, kind)
	return ok
}

// Get returns the current record for kind, if any.
func (s *ActiveSet) Get(kind capability.Capability) (ActiveRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.current[kind]
	return rec, ok
}

// Len reports how many capability kinds are currently active.
func (s *ActiveSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.current)
}
