package orch

import (
	"context"

	"github.com/dkeye/VideoClient/internal/app/connection"
	"github.com/dkeye/VideoClient/internal/domain"
)

// attachStream publishes the live stream to the geometry tracker and the render
// coordinator. It waits for both a successful join and a connected phase, since
// decode is not guaranteed ready before that; the two can arrive in either order.
func (o *Orchestrator) attachStream() {
	if !o.joined || o.Conn.State().Phase != connection.PhaseConnected {
		return
	}
	stream := o.engine.MediaStream()
	if stream == nil || stream == o.attached {
		return
	}
	o.attached = stream
	o.Geometry.Attach(stream)
	o.Render.Attach(stream)
	o.logger.Info().Msg("media stream attached")

	if o.feed.ActiveID() == 0 {
		if id := stream.ActiveVideoID(); id != 0 {
			o.feed.SetActive(id)
			return
		}
	}
	o.feed.Sync()
}

func (o *Orchestrator) detachStream() {
	o.Render.Detach()
	o.Geometry.Detach()
	if o.attached != nil {
		o.logger.Info().Msg("media stream detached")
	}
	o.attached = nil
}

func (o *Orchestrator) onActiveVideo(id domain.UserID) {
	if o.Roster.ActiveCandidate(id) == nil && id != 0 {
		o.logger.Debug().Stringer("user", id).Msg("active user not in roster yet")
	}
	o.feed.SetActive(id)
}

// ObserveSurface forwards a container resize onto the session goroutine.
func (o *Orchestrator) ObserveSurface(ctx context.Context, width, height int) error {
	return o.Post(ctx, func() { o.Geometry.Observe(width, height) })
}
