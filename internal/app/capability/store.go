package capability

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/VideoClient/internal/app/observe"
	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
)

// Store holds the current snapshot and tells subscribers when it changes.
// It is owned by the session loop goroutine.
type Store struct {
	current   domain.Capabilities
	listeners observe.Listeners[domain.Capabilities]
}

func NewStore() *Store { return &Store{} }

func (s *Store) Current() domain.Capabilities { return s.current }

// Dispatch applies a and notifies subscribers if the snapshot changed.
func (s *Store) Dispatch(a Action) {
	next := Apply(s.current, a)
	if next == s.current {
		log.Debug().Str("module", "app.capability").Str("action", a.Tag()).Msg("no change")
		return
	}
	s.current = next
	log.Info().Str("module", "app.capability").Str("action", a.Tag()).Bool("enabled", a.Enabled).Msg("capabilities changed")
	s.listeners.Notify(next)
}

// HandleChange maps an engine media-capability notification onto Dispatch.
func (s *Store) HandleChange(n core.MediaCapabilityChange) {
	s.Dispatch(Set(n.Channel, n.Direction, n.Enabled()))
}

func (s *Store) Subscribe(fn func(domain.Capabilities)) func() {
	return s.listeners.Subscribe(fn)
}
