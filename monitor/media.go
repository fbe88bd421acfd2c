package monitor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pagescope/pagescope/pkg/browserapi"
	"github.com/pagescope/pagescope/pkg/capability"
)

// MediaDevices wraps the media acquisition entry point. On a successful
// grant it classifies which track kinds were requested, records them as
// actively in use, and instruments every returned track so an explicit stop
// or an environment-driven end is reported exactly once. A denial or
// hardware error passes through untouched and is never reported as usage.
type MediaDevices struct {
	real browserapi.MediaDevices
	mon  *Monitor
}

var _ browserapi.MediaDevices = (*MediaDevices)(nil)

// GetUserMedia delegates to the real implementation and observes the grant.
func (d *MediaDevices) GetUserMedia(ctx context.Context, constraints browserapi.MediaConstraints) (browserapi.MediaStream, error) {
	stream, err := d.real.GetUserMedia(ctx, constraints)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()

	if constraints.WantsVideo() {
		d.mon.active.Start(capability.Camera, stream, requestID)
		d.mon.observe(ctx, capability.Camera, capability.ActionActiveUse,
			capability.MediaContext{Constraints: constraintForm(constraints.VideoOpts), RequestID: requestID})
	}
	if constraints.WantsAudio() {
		d.mon.active.Start(capability.Microphone, stream, requestID)
		d.mon.observe(ctx, capability.Microphone, capability.ActionActiveUse,
			capability.MediaContext{Constraints: constraintForm(constraints.AudioOpts), RequestID: requestID})
	}

	return newStreamTap(d.mon, stream, requestID), nil
}

// constraintForm classifies one kind's constraint: boolean request or
// parameter object.
func constraintForm(opts map[string]any) capability.ConstraintForm {
	if opts != nil {
		return capability.ConstraintAdvanced
	}
	return capability.ConstraintBasic
}

// GetUserMediaWithCallbacks is the legacy callback form of the entry point.
// Exactly one of success or failure is invoked, asynchronously.
func (d *MediaDevices) GetUserMediaWithCallbacks(constraints browserapi.MediaConstraints, success func(browserapi.MediaStream), failure func(error)) {
	go func() {
		stream, err := d.GetUserMedia(context.Background(), constraints)
		if err != nil {
			if failure != nil {
				failure(err)
			}
			return
		}
		if success != nil {
			success(stream)
		}
	}()
}

// streamTap forwards a media stream while exposing instrumented tracks.
type streamTap struct {
	real   browserapi.MediaStream
	tracks []browserapi.MediaTrack
}

func newStreamTap(mon *Monitor, stream browserapi.MediaStream, requestID string) *streamTap {
	tap := &streamTap{real: stream}
	for _, track := range stream.Tracks() {
		tap.tracks = append(tap.tracks, newTrackTap(mon, track, requestID))
	}
	return tap
}

func (s *streamTap) ID() string { return s.real.ID() }

func (s *streamTap) Tracks() []browserapi.MediaTrack { return s.tracks }

// trackTap forwards one media track, reporting its end exactly once whether
// it stops explicitly or ends on its own. A second stop is a no-op.
type trackTap struct {
	real      browserapi.MediaTrack
	mon       *Monitor
	kind      capability.Capability
	requestID string
	once      sync.Once
}

func newTrackTap(mon *Monitor, track browserapi.MediaTrack, requestID string) *trackTap {
	kind := capability.Camera
	if track.Kind() == "audio" {
		kind = capability.Microphone
	}

	tap := &trackTap{
		real:      track,
		mon:       mon,
		kind:      kind,
		requestID: requestID,
	}

	// Ended can fire without an explicit stop (device unplugged,
	// permission revoked); the once guard collapses the two paths.
	track.OnEnded(func() {
		tap.finish(context.Background(), "ended")
	})

	return tap
}

func (t *trackTap) ID() string { return t.real.ID() }

func (t *trackTap) Kind() string { return t.real.Kind() }

// Stop ends the real track, then reports the end of use.
func (t *trackTap) Stop() {
	t.real.Stop()
	t.finish(context.Background(), "stop")
}

// OnEnded passes the caller's handler straight to the real track.
func (t *trackTap) OnEnded(fn func()) {
	t.real.OnEnded(fn)
}

func (t *trackTap) finish(ctx context.Context, reason string) {
	t.once.Do(func() {
		t.mon.active.Stop(t.kind)
		t.mon.observe(ctx, t.kind, capability.ActionStopped, capability.MediaContext{
			TrackID:   t.real.ID(),
			RequestID: t.requestID,
			Reason:    reason,
		})
	})
}
