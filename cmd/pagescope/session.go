package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pagescope/pagescope/internal/config"
	"github.com/pagescope/pagescope/internal/telemetry"
	"github.com/pagescope/pagescope/monitor"
	"github.com/pagescope/pagescope/pkg/browserapi"
	"github.com/pagescope/pagescope/pkg/browserapi/browserapitest"
	"github.com/pagescope/pagescope/sink"
)

// session replays a scripted page session against fake capability
// implementations, exercising every interception path: media grant and
// stop, one-shot and continuous location, clipboard traffic, and a
// notification. Back-to-back replays inside the debounce window double as a
// live demonstration of suppression.
type session struct {
	mon    *monitor.Monitor
	geo    *browserapitest.FakeGeolocation
	logger zerolog.Logger
}

func newSession(cfg *config.Config, sinks []sink.Sink, metrics *telemetry.EventMetrics, logger zerolog.Logger) *session {
	geo := &browserapitest.FakeGeolocation{
		Position: browserapi.Position{Latitude: 60.17, Longitude: 24.94, Accuracy: 12},
	}

	bindings := monitor.Bindings{
		Media:       &browserapitest.FakeMediaDevices{},
		Geolocation: geo,
		Clipboard:   &browserapitest.FakeClipboard{Text: "synthetic clipboard payload"},
		Notifications: &browserapitest.FakeNotifications{
			PermissionState: "granted",
		},
	}

	return &session{
		mon:    monitor.New(bindings, sinks, monitorOptions(cfg, metrics, logger)...),
		geo:    geo,
		logger: logger,
	}
}

// Run replays the session every interval until ctx is done. With once set,
// it replays a single session and returns.
func (s *session) Run(ctx context.Context, interval time.Duration, once bool) error {
	if once {
		s.replay(ctx)
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.replay(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.replay(ctx)
		}
	}
}

func (s *session) replay(ctx context.Context) {
	s.logger.Debug().Msg("replaying synthetic session")

	s.useMedia(ctx)
	s.useLocation()
	s.useClipboard(ctx)
	s.useNotification()
}

func (s *session) useMedia(ctx context.Context) {
	stream, err := s.mon.MediaDevices().GetUserMedia(ctx, browserapi.MediaConstraints{Video: true, Audio: true})
	if err != nil {
		s.logger.Warn().Err(err).Msg("media grant failed")
		return
	}
	for _, track := range stream.Tracks() {
		track.Stop()
	}
}

func (s *session) useLocation() {
	s.mon.Geolocation().GetCurrentPosition(func(browserapi.Position) {}, func(error) {}, browserapi.PositionOptions{})

	id := s.mon.Geolocation().WatchPosition(func(browserapi.Position) {}, func(error) {}, browserapi.PositionOptions{})
	for i := 0; i < 12; i++ {
		s.geo.PushUpdate(id, browserapi.Position{Latitude: 60.17, Longitude: 24.94, Accuracy: float64(10 + i)})
	}
	s.mon.Geolocation().ClearWatch(id)
}

func (s *session) useClipboard(ctx context.Context) {
	if _, err := s.mon.Clipboard().ReadText(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("clipboard read failed")
	}
	if err := s.mon.Clipboard().WriteText(ctx, "copied by synthetic page"); err != nil {
		s.logger.Warn().Err(err).Msg("clipboard write failed")
	}
}

func (s *session) useNotification() {
	_, err := s.mon.Notifications().New("synthetic notice", browserapi.NotificationOptions{
		Body: "pagescope harness",
		Icon: "icon.png",
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("notification construction failed")
	}
}

// Close releases the monitor and its sinks.
func (s *session) Close() {
	if err := s.mon.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("sink close failed")
	}
}
