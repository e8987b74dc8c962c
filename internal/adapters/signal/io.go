package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/VideoClient/internal/core"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

func (e *Engine) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.logger.Debug().Msg("writePump ctx done")
			return
		case data, ok := <-e.conn.send:
			if !ok {
				e.logger.Debug().Msg("writePump channel closed")
				return
			}
			if err := e.conn.conn.SetWriteDeadline(time.Now().Add(e.opts.WriteTimeout)); err != nil {
				e.logger.Error().Err(err).Msg("writePump set deadline")
				return
			}
			if err := e.conn.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				e.logger.Error().Err(err).Msg("writePump write error")
				return
			}
		}
	}
}

func (e *Engine) readPump(ctx context.Context) {
	defer func() {
		e.logger.Info().Msg("readPump closing")
		// A lost bridge is a closed session as far as the client is concerned.
		if ctx.Err() == nil {
			e.tryEmit(core.ConnectionChange{State: core.StateClosed})
		}
		e.shutdown()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, data, err := e.conn.conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				e.logger.Error().Err(err).Msg("readPump read error")
			}
			return
		}
		e.handleFrame(ctx, data)
	}
}

func (e *Engine) handleFrame(ctx context.Context, data []byte) {
	if !gjson.ValidBytes(data) {
		e.logger.Warn().Int("len", len(data)).Msg("bad json")
		return
	}
	frame := gjson.ParseBytes(data)

	switch t := frame.Get("type").String(); t {
	case "result":
		e.resolve(frame)
	case "event":
		e.handleEvent(frame)
	case "ping":
		e.handlePing()
	case "offer":
		e.handleOffer(ctx, data)
	case "candidate":
		e.handleCandidate(data)
	default:
		e.logger.Warn().Str("type", t).Msg("unknown frame")
	}
}

func (e *Engine) handleEvent(frame gjson.Result) {
	name := frame.Get("event").String()
	n, err := decodeNotification(name, []byte(frame.Get("payload").Raw))
	if err != nil {
		e.logger.Warn().Err(err).Str("event", name).Msg("dropped event")
		return
	}
	if n == nil {
		e.logger.Debug().Str("event", name).Msg("ignored event")
		return
	}
	e.emit(n)
}

func (e *Engine) sendJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		e.logger.Error().Err(err).Msg("sendJSON marshal")
		return err
	}
	if err := e.conn.TrySend(b); err != nil {
		e.logger.Warn().Err(err).Msg("sendJSON dropped")
		return err
	}
	return nil
}
