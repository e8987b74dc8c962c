package orch

import (
	"github.com/dkeye/VideoClient/internal/app/connection"
	"github.com/dkeye/VideoClient/internal/app/layout"
	"github.com/dkeye/VideoClient/internal/app/render"
	"github.com/dkeye/VideoClient/internal/domain"
)

// Status is a read-only copy of the session state, safe to hand to other goroutines.
type Status struct {
	SessionID    domain.SessionID     `json:"sessionId"`
	Topic        string               `json:"topic"`
	Connection   connection.State     `json:"connection"`
	Capabilities domain.Capabilities  `json:"capabilities"`
	Layout       layout.Mode          `json:"layout,omitempty"`
	ActiveUserID domain.UserID        `json:"activeUserId"`
	Binding      render.Binding       `json:"binding"`
	Geometry     domain.Geometry      `json:"geometry"`
	Participants []domain.Participant `json:"participants"`
	TornDown     bool                 `json:"tornDown"`
}

func (o *Orchestrator) publishStatus() {
	torn := false
	select {
	case <-o.done:
		torn = true
	default:
	}
	o.status.Store(&Status{
		SessionID:    o.opts.Info.ID,
		Topic:        o.opts.Info.Topic,
		Connection:   o.Conn.State(),
		Capabilities: o.Caps.Current(),
		Layout:       o.mode,
		ActiveUserID: o.feed.ActiveID(),
		Binding:      o.Render.Binding(),
		Geometry:     o.Geometry.Current(),
		Participants: o.Roster.List(),
		TornDown:     torn,
	})
}

// Status returns the snapshot published after the last processed event.
func (o *Orchestrator) Status() Status {
	return *o.status.Load()
}
