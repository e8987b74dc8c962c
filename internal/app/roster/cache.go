// Package roster caches the participant list delivered by the engine.
package roster

import (
	"cmp"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/VideoClient/internal/app/observe"
	"github.com/dkeye/VideoClient/internal/domain"
)

// Roster is a keyed, order-irrelevant participant set. Treat it as read-only.
type Roster map[domain.UserID]domain.Participant

// Lookup returns a copy of the participant with id, or nil.
func (r Roster) Lookup(id domain.UserID) *domain.Participant {
	if id == 0 {
		return nil
	}
	p, ok := r[id]
	if !ok {
		return nil
	}
	return &p
}

// Change is published on every replace. Previous is the roster it replaced and
// is only kept for the duration of that notification.
type Change struct {
	Previous Roster
	Current  Roster
}

// Cache only supports wholesale replacement; it never merges.
type Cache struct {
	current   Roster
	listeners observe.Listeners[Change]
}

func NewCache() *Cache {
	return &Cache{current: Roster{}}
}

// Replace installs list as the authoritative roster.
func (c *Cache) Replace(list []domain.Participant) {
	next := make(Roster, len(list))
	for _, p := range list {
		next[p.UserID] = p
	}
	prev := c.current
	c.current = next
	log.Debug().Str("module", "app.roster").Int("count", len(next)).Msg("roster replaced")
	c.listeners.Notify(Change{Previous: prev, Current: next})
}

// ActiveCandidate resolves the engine's active id against the roster.
// An id missing from the roster yields nil.
func (c *Cache) ActiveCandidate(id domain.UserID) *domain.Participant {
	return c.current.Lookup(id)
}

func (c *Cache) Len() int { return len(c.current) }

// List returns the participants ordered by id.
func (c *Cache) List() []domain.Participant {
	out := make([]domain.Participant, 0, len(c.current))
	for _, p := range c.current {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Participant) int {
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out
}

func (c *Cache) Subscribe(fn func(Change)) func() {
	return c.listeners.Subscribe(fn)
}
