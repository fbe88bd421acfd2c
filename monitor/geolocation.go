package monitor

import (
	"context"

	"github.com/pagescope/pagescope/pkg/browserapi"
	"github.com/pagescope/pagescope/pkg/capability"
)

// Geolocation wraps the location entry point. One-shot queries report each
// successful fix; watches report their first update, every tenth cumulative
// update, and their explicit clear. Errors reach the caller's failure
// callback untouched and are never reported.
type Geolocation struct {
	real browserapi.Geolocation
	mon  *Monitor
}

var _ browserapi.Geolocation = (*Geolocation)(nil)

// GetCurrentPosition observes each successful fix, then forwards it.
func (g *Geolocation) GetCurrentPosition(success func(browserapi.Position), failure func(error), opts browserapi.PositionOptions) {
	wrapped := func(pos browserapi.Position) {
		g.mon.observe(context.Background(), capability.Location, capability.ActionAccessed,
			capability.PositionContext{Accuracy: pos.Accuracy})
		success(pos)
	}
	g.real.GetCurrentPosition(wrapped, failure, opts)
}

// WatchPosition counts successful updates against a per-watch record. The
// record is created before the real call and bound to the provider-assigned
// id afterward, so an update arriving before the id is known is still
// counted against the right watch.
func (g *Geolocation) WatchPosition(success func(browserapi.Position), failure func(error), opts browserapi.PositionOptions) int64 {
	watch := g.mon.watches.Begin()

	wrapped := func(pos browserapi.Position) {
		updates, elapsed := watch.Tick()
		switch {
		case updates == 1:
			g.mon.observe(context.Background(), capability.Location, capability.ActionTrackingStarted,
				capability.WatchContext{WatchID: watch.ID(), Updates: updates, Accuracy: pos.Accuracy})
		case updates%10 == 0:
			g.mon.observe(context.Background(), capability.Location, capability.ActionTrackingActive,
				capability.WatchContext{WatchID: watch.ID(), Updates: updates, Elapsed: elapsed, Accuracy: pos.Accuracy})
		}
		success(pos)
	}

	id := g.real.WatchPosition(wrapped, failure, opts)
	g.mon.watches.Bind(id, watch)
	return id
}

// ClearWatch always forwards to the real clear; the observation side only
// fires if the id referred to a tracked watch. Late updates for a cleared
// watch still tick their record but it is no longer reachable, so nothing
// further is reported for it beyond the debounced tracking events.
func (g *Geolocation) ClearWatch(id int64) {
	watch, tracked := g.mon.watches.Clear(id)
	g.real.ClearWatch(id)

	if !tracked {
		return
	}

	updates, elapsed := watch.Snapshot()
	g.mon.observe(context.Background(), capability.Location, capability.ActionTrackingStopped,
		capability.WatchContext{WatchID: id, TotalUpdates: updates, Elapsed: elapsed})
}
