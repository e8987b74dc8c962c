// Package geometry follows the size of the video surface's container.
package geometry

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/VideoClient/internal/app/observe"
	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
)

// Tracker emits a geometry only when width or height actually changed.
type Tracker struct {
	surface   core.Surface
	current   domain.Geometry
	resizer   core.CanvasResizer
	listeners observe.Listeners[domain.Geometry]
}

func NewTracker(surface core.Surface, initial domain.Geometry) *Tracker {
	return &Tracker{surface: surface, current: initial}
}

func (t *Tracker) Current() domain.Geometry { return t.current }

// Attach publishes the live stream so resizes reach the engine's canvas too.
func (t *Tracker) Attach(r core.CanvasResizer) {
	t.resizer = r
}

func (t *Tracker) Detach() {
	t.resizer = nil
}

// Observe records a container resize. Sizes that are not laid out yet (non-positive)
// are ignored. It reports whether subscribers were notified.
func (t *Tracker) Observe(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	next := domain.Geometry{Width: width, Height: height}
	if next == t.current {
		return false
	}
	t.current = next
	if t.resizer != nil {
		if err := t.resizer.UpdateVideoCanvasDimension(t.surface, next); err != nil {
			log.Warn().Err(err).Str("module", "app.geometry").Str("surface", string(t.surface)).Msg("canvas resize failed")
		}
	}
	log.Debug().Str("module", "app.geometry").Int("width", width).Int("height", height).Msg("surface resized")
	t.listeners.Notify(next)
	return true
}

func (t *Tracker) Subscribe(fn func(domain.Geometry)) func() {
	return t.listeners.Subscribe(fn)
}
