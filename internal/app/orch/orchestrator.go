// Package orch is the session context: it owns every state holder and the single
// goroutine that mutates them.
package orch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/VideoClient/internal/app/capability"
	"github.com/dkeye/VideoClient/internal/app/connection"
	"github.com/dkeye/VideoClient/internal/app/geometry"
	"github.com/dkeye/VideoClient/internal/app/layout"
	"github.com/dkeye/VideoClient/internal/app/render"
	"github.com/dkeye/VideoClient/internal/app/roster"
	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
)

type Options struct {
	Info                domain.SessionInfo
	Surface             core.Surface
	Quality             core.VideoQuality
	InitialGeometry     domain.Geometry
	CrossOriginIsolated bool
	Policy              layout.Policy
	// JoinTimeout bounds init plus join. Zero means only Run's context applies.
	JoinTimeout time.Duration
}

// Orchestrator wires the engine's notification stream to the state owners.
// All state is mutated from Run's goroutine only; other goroutines go through Post.
type Orchestrator struct {
	opts   Options
	engine core.SessionEngine
	toast  core.Toaster

	Caps     *capability.Store
	Conn     *connection.Machine
	Roster   *roster.Cache
	Geometry *geometry.Tracker
	Render   *render.Coordinator

	feed     *render.Feed
	mode     layout.Mode
	joined   bool
	attached core.MediaStream
	unsubs   []func()

	inbox        chan func()
	done         chan struct{}
	teardownOnce sync.Once
	closed       chan struct{}
	closedOnce   sync.Once
	status       atomic.Pointer[Status]
	logger       zerolog.Logger
}

func New(opts Options, engine core.SessionEngine, toast core.Toaster, onClose core.SessionCloseFunc) *Orchestrator {
	if opts.Info.ID == "" {
		opts.Info.ID = domain.SessionID(uuid.NewString())
	}
	if opts.InitialGeometry.IsZero() {
		opts.InitialGeometry = domain.DefaultGeometry
	}
	if opts.Policy == nil {
		opts.Policy = layout.SimplePolicy{}
	}

	caps := capability.NewStore()
	o := &Orchestrator{
		opts:     opts,
		engine:   engine,
		toast:    toast,
		Caps:     caps,
		Conn:     connection.NewMachine(caps, toast, onClose),
		Roster:   roster.NewCache(),
		Geometry: geometry.NewTracker(opts.Surface, opts.InitialGeometry),
		Render:   render.NewCoordinator(opts.Surface, opts.Quality),
		inbox:    make(chan func(), 16),
		done:     make(chan struct{}),
		closed:   make(chan struct{}),
		logger:   log.With().Str("module", "app.orch").Str("session", string(opts.Info.ID)).Logger(),
	}
	o.feed = render.Watch(o.Render, o.Caps, o.Roster, o.Geometry)
	o.unsubs = append(o.unsubs, o.Conn.Subscribe(o.onTransition))
	o.publishStatus()
	return o
}

// Run joins the session and processes notifications until ctx ends or the
// engine closes its stream. It tears everything down before returning.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer o.Teardown()

	o.Conn.BeginJoin()
	o.publishStatus()
	go o.join(ctx)

	events := o.engine.Events()
	for {
		select {
		case <-ctx.Done():
			o.logger.Info().Msg("session context done")
			return ctx.Err()
		case n, ok := <-events:
			if !ok {
				o.logger.Info().Msg("engine event stream closed")
				return core.ErrClosed
			}
			o.Dispatch(n)
		case fn := <-o.inbox:
			fn()
		}
		o.publishStatus()
	}
}

// Post schedules fn on the session goroutine.
func (o *Orchestrator) Post(ctx context.Context, fn func()) error {
	select {
	case <-o.done:
		return core.ErrClosed
	default:
	}
	select {
	case o.inbox <- fn:
		return nil
	case <-o.done:
		return core.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch handles one notification to completion.
func (o *Orchestrator) Dispatch(n core.Notification) {
	switch n := n.(type) {
	case core.ConnectionChange:
		o.Conn.Handle(n)
	case core.MediaCapabilityChange:
		o.Caps.HandleChange(n)
	case core.RosterChange:
		o.Roster.Replace(n.Participants)
	case core.ActiveVideoChange:
		o.onActiveVideo(n.UserID)
	case core.DialoutChange:
		o.logger.Info().Int("code", n.Code).Msg("dialout state change")
	case core.MergedAudio:
		o.logger.Info().Str("status", n.Status).Msg("audio merged")
	default:
		o.logger.Warn().Str("kind", n.Kind()).Msg("unhandled notification")
	}
}

// Teardown unbinds and unsubscribes everything. Safe to call more than once.
func (o *Orchestrator) Teardown() {
	o.teardownOnce.Do(func() {
		o.feed.Stop()
		for _, off := range o.unsubs {
			off()
		}
		o.unsubs = nil
		o.detachStream()
		close(o.done)
		o.publishStatus()
		o.logger.Info().Msg("session torn down")
	})
}

// Done is closed once the session has been torn down.
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

// Closed is closed once the session loop has processed the session's close,
// whether it came from a leave, the host or a rejected join.
func (o *Orchestrator) Closed() <-chan struct{} { return o.closed }
