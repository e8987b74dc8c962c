package orch

import (
	"context"
	"errors"

	"github.com/dkeye/VideoClient/internal/app/connection"
	"github.com/dkeye/VideoClient/internal/app/layout"
	"github.com/dkeye/VideoClient/internal/core"
)

// join runs the asynchronous init/join calls and reports back on the session goroutine.
func (o *Orchestrator) join(ctx context.Context) {
	if o.opts.JoinTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.JoinTimeout)
		defer cancel()
	}
	opts := layout.InitOptions(o.opts.CrossOriginIsolated, o.opts.Info.GroupSession)
	err := o.engine.Init(ctx, opts)
	if err == nil {
		err = o.engine.Join(ctx, o.opts.Info)
	}
	if postErr := o.Post(context.WithoutCancel(ctx), func() { o.onJoined(err) }); postErr != nil {
		o.logger.Warn().Err(postErr).Msg("join result dropped")
	}
}

func (o *Orchestrator) onJoined(err error) {
	if err != nil {
		reason := err.Error()
		var je *core.JoinError
		if errors.As(err, &je) {
			reason = je.Reason
		}
		o.Conn.JoinFailed(reason)
		return
	}
	o.joined = true
	stream := o.engine.MediaStream()
	multi := stream != nil && stream.IsSupportMultipleVideos()
	o.mode = o.opts.Policy.Select(layout.Environment{
		MultiVideoCapable:   multi,
		CrossOriginIsolated: o.opts.CrossOriginIsolated,
		GroupSession:        o.opts.Info.GroupSession,
	})
	o.logger.Info().Str("layout", string(o.mode)).Bool("multi_video", multi).Msg("joined")
	o.Conn.JoinSucceeded()
	o.attachStream()
}

// Leave asks the engine to leave (or end, for hosts). The Closed notification
// that follows drives the cleanup.
func (o *Orchestrator) Leave(ctx context.Context, end bool) error {
	return o.engine.Leave(ctx, end)
}

func (o *Orchestrator) onTransition(tr connection.Transition) {
	switch tr.To.Phase {
	case connection.PhaseConnected:
		o.attachStream()
	case connection.PhaseClosed:
		o.detachStream()
		o.closedOnce.Do(func() {
			o.publishStatus()
			close(o.closed)
		})
	}
}
