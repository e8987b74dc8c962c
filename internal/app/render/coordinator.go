package render

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
)

// Coordinator exclusively owns one surface and issues bind/unbind/reposition
// against it. It must only be driven from the session loop goroutine.
type Coordinator struct {
	surface  core.Surface
	quality  core.VideoQuality
	renderer core.Renderer

	previousActive *domain.Participant
	lastGeometry   domain.Geometry
	binding        Binding

	logger zerolog.Logger
}

func NewCoordinator(surface core.Surface, quality core.VideoQuality) *Coordinator {
	return &Coordinator{
		surface: surface,
		quality: quality,
		logger:  log.With().Str("module", "app.render").Str("surface", string(surface)).Logger(),
	}
}

func (c *Coordinator) Binding() Binding { return c.binding }

// Attach publishes the live renderer. Nothing is rendered before this.
func (c *Coordinator) Attach(r core.Renderer) {
	c.renderer = r
}

// Detach unbinds whatever is rendered and forgets all tracking state.
// It is safe to call repeatedly.
func (c *Coordinator) Detach() {
	if c.binding.Bound() && c.renderer != nil {
		if err := c.renderer.StopRenderVideo(c.surface, c.binding.UserID); err != nil {
			c.logger.Warn().Err(err).Stringer("user", c.binding.UserID).Msg("unbind on detach failed")
		}
	}
	c.renderer = nil
	c.binding = Binding{}
	c.previousActive = nil
	c.lastGeometry = domain.Geometry{}
}

// Evaluate runs the decision table once and returns the commands it issued.
//
// Rules, first match wins:
//  1. not decode-ready or no renderer/surface: skip the cycle entirely.
//  2. video flag differs from the tracked one: bind the new, or unbind the old.
//  3. both on but the user changed: unbind old, then bind new.
//  4. same bound user and the geometry changed: reposition only.
//  5. otherwise nothing.
//
// The tracked participant is replaced after every non-skipped cycle.
func (c *Coordinator) Evaluate(in Input) []Command {
	if !in.DecodeReady || c.renderer == nil || c.surface == "" {
		c.logger.Debug().Bool("decode_ready", in.DecodeReady).Bool("attached", c.renderer != nil).Msg("render cycle skipped")
		return nil
	}

	prev, cur := c.previousActive, in.Active
	var issued []Command
	ok := true

	switch {
	case domain.VideoOn(cur) != domain.VideoOn(prev):
		if domain.VideoOn(cur) {
			issued, ok = c.bind(issued, cur, in.Geometry)
		} else {
			issued, ok = c.unbind(issued, prev.UserID)
		}
	case domain.VideoOn(cur) && domain.VideoOn(prev) && !domain.SameUser(cur, prev):
		if issued, ok = c.unbind(issued, prev.UserID); ok {
			issued, ok = c.bind(issued, cur, in.Geometry)
		}
	case domain.VideoOn(cur) && c.binding.UserID == cur.UserID && in.Geometry != in.PreviousGeometry:
		issued, ok = c.reposition(issued, cur.UserID, in.Geometry)
	}

	if !ok {
		// Keep tracking in line with what is really bound so the next cycle retries.
		if !c.binding.Bound() {
			c.previousActive = nil
		}
		return issued
	}
	c.previousActive = clone(cur)
	c.lastGeometry = in.Geometry
	return issued
}

func (c *Coordinator) bind(issued []Command, p *domain.Participant, g domain.Geometry) ([]Command, bool) {
	if !domain.VideoOn(p) {
		return issued, true
	}
	if c.binding.UserID == p.UserID {
		// Already ours; never bind the same surface twice.
		if c.binding.Placement.Geometry != g {
			return c.reposition(issued, p.UserID, g)
		}
		return issued, true
	}
	if c.binding.Bound() {
		var ok bool
		if issued, ok = c.unbind(issued, c.binding.UserID); !ok {
			return issued, false
		}
	}
	placement := g.At(0, 0)
	if err := c.renderer.RenderVideo(c.surface, p.UserID, placement, c.quality); err != nil {
		c.logger.Warn().Err(err).Stringer("user", p.UserID).Msg("bind failed, cycle skipped")
		return issued, false
	}
	c.binding = Binding{UserID: p.UserID, Surface: c.surface, Placement: placement}
	c.logger.Debug().Stringer("user", p.UserID).Int("width", g.Width).Int("height", g.Height).Msg("bind")
	return append(issued, Command{Op: OpBind, UserID: p.UserID, Placement: placement}), true
}

func (c *Coordinator) unbind(issued []Command, user domain.UserID) ([]Command, bool) {
	if err := c.renderer.StopRenderVideo(c.surface, user); err != nil {
		c.logger.Warn().Err(err).Stringer("user", user).Msg("unbind failed, cycle skipped")
		return issued, false
	}
	if c.binding.UserID == user {
		c.binding = Binding{}
	}
	c.logger.Debug().Stringer("user", user).Msg("unbind")
	return append(issued, Command{Op: OpUnbind, UserID: user}), true
}

func (c *Coordinator) reposition(issued []Command, user domain.UserID, g domain.Geometry) ([]Command, bool) {
	placement := g.At(0, 0)
	if err := c.renderer.AdjustRenderedVideoPosition(c.surface, user, placement); err != nil {
		c.logger.Warn().Err(err).Stringer("user", user).Msg("reposition failed, cycle skipped")
		return issued, false
	}
	c.binding.Placement = placement
	c.logger.Debug().Stringer("user", user).Int("width", g.Width).Int("height", g.Height).Msg("reposition")
	return append(issued, Command{Op: OpReposition, UserID: user, Placement: placement}), true
}

func clone(p *domain.Participant) *domain.Participant {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
