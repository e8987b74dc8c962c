package render

import (
	"github.com/dkeye/VideoClient/internal/app/roster"
	"github.com/dkeye/VideoClient/internal/domain"
)

type CapabilitySource interface {
	Current() domain.Capabilities
	Subscribe(func(domain.Capabilities)) func()
}

type RosterSource interface {
	ActiveCandidate(domain.UserID) *domain.Participant
	Subscribe(func(roster.Change)) func()
}

type GeometrySource interface {
	Current() domain.Geometry
	Subscribe(func(domain.Geometry)) func()
}

// Feed re-evaluates the coordinator whenever any of its sources change.
type Feed struct {
	coord    *Coordinator
	caps     CapabilitySource
	roster   RosterSource
	geometry GeometrySource
	activeID domain.UserID
	unsubs   []func()
}

// Watch subscribes c to the three state owners. Call Stop on the returned feed to unsubscribe.
func Watch(c *Coordinator, caps CapabilitySource, r RosterSource, g GeometrySource) *Feed {
	f := &Feed{coord: c, caps: caps, roster: r, geometry: g}
	f.unsubs = []func(){
		caps.Subscribe(func(domain.Capabilities) { f.Sync() }),
		r.Subscribe(func(roster.Change) { f.Sync() }),
		g.Subscribe(func(domain.Geometry) { f.Sync() }),
	}
	return f
}

func (f *Feed) ActiveID() domain.UserID { return f.activeID }

// SetActive records the engine's active-video user and re-evaluates.
func (f *Feed) SetActive(id domain.UserID) []Command {
	f.activeID = id
	return f.Sync()
}

// Sync builds the current input and evaluates once.
func (f *Feed) Sync() []Command {
	return f.coord.Evaluate(Input{
		Active:           f.roster.ActiveCandidate(f.activeID),
		DecodeReady:      f.caps.Current().VideoDecodeReady(),
		Geometry:         f.geometry.Current(),
		PreviousGeometry: f.coord.lastGeometry,
	})
}

// Stop removes every subscription. It is idempotent.
func (f *Feed) Stop() {
	for _, off := range f.unsubs {
		off()
	}
	f.unsubs = nil
}
