package signal

import (
	"context"
	"errors"

	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
)

func (e *Engine) Init(ctx context.Context, opts core.InitOptions) error {
	_, err := e.call(ctx, "init", map[string]any{"options": opts})
	return err
}

// Join publishes the media stream when the bridge accepts the join.
// A rejection is returned as *core.JoinError.
func (e *Engine) Join(ctx context.Context, info domain.SessionInfo) error {
	frame, err := e.call(ctx, "join", map[string]any{
		"sessionId":    info.ID,
		"topic":        info.Topic,
		"name":         info.Name,
		"password":     info.Password,
		"signature":    info.Signature,
		"groupSession": info.GroupSession,
	})
	if err != nil {
		var re *RequestError
		if errors.As(err, &re) {
			return &core.JoinError{Reason: re.Reason}
		}
		return err
	}

	stream := &mediaStream{
		engine:   e,
		multi:    frame.Get("stream.multipleVideos").Bool(),
		activeID: domain.UserID(frame.Get("stream.activeVideoId").Uint()),
	}
	e.streamMu.Lock()
	e.stream = stream
	e.streamMu.Unlock()

	e.logger.Info().
		Str("topic", info.Topic).
		Bool("multi_video", stream.multi).
		Stringer("active", stream.activeID).
		Msg("joined")
	return nil
}

// Leave asks the bridge to leave the session, or end it for everyone when end is set.
func (e *Engine) Leave(ctx context.Context, end bool) error {
	e.streamMu.RLock()
	joined := e.stream != nil
	e.streamMu.RUnlock()
	if !joined {
		return core.ErrNotJoined
	}

	if _, err := e.call(ctx, "leave", map[string]any{"end": end}); err != nil {
		return err
	}
	e.streamMu.Lock()
	e.stream = nil
	e.streamMu.Unlock()
	e.closePeer()
	return nil
}
