package signal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

type reply struct {
	frame gjson.Result
	err   error
}

// RequestError is a failed request as reported by the bridge.
type RequestError struct {
	Type   string
	Reason string
}

func (e *RequestError) Error() string { return fmt.Sprintf("%s failed: %s", e.Type, e.Reason) }

// call sends a request frame and waits for the matching result frame.
func (e *Engine) call(ctx context.Context, typ string, payload map[string]any) (gjson.Result, error) {
	id := uuid.NewString()
	ch := make(chan reply, 1)

	e.pendingMu.Lock()
	e.pending[id] = ch
	e.pendingMu.Unlock()
	defer e.forget(id)

	if err := e.send(typ, id, payload); err != nil {
		return gjson.Result{}, err
	}

	select {
	case r := <-ch:
		if r.err != nil {
			return gjson.Result{}, r.err
		}
		if !r.frame.Get("ok").Bool() {
			return r.frame, &RequestError{Type: typ, Reason: r.frame.Get("reason").String()}
		}
		return r.frame, nil
	case <-ctx.Done():
		return gjson.Result{}, ctx.Err()
	case <-e.done:
		return gjson.Result{}, ErrConnClosed
	}
}

// send writes a fire-and-forget frame; a failed result for it is only logged.
func (e *Engine) send(typ, id string, payload map[string]any) error {
	frame := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		frame[k] = v
	}
	frame["type"] = typ
	if id == "" {
		id = uuid.NewString()
	}
	frame["id"] = id
	b, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return e.conn.TrySend(b)
}

func (e *Engine) resolve(frame gjson.Result) {
	id := frame.Get("id").String()
	e.pendingMu.Lock()
	ch, ok := e.pending[id]
	delete(e.pending, id)
	e.pendingMu.Unlock()

	if !ok {
		if !frame.Get("ok").Bool() {
			e.logger.Warn().Str("id", id).Str("reason", frame.Get("reason").String()).Msg("command failed")
		}
		return
	}
	ch <- reply{frame: frame}
}

func (e *Engine) forget(id string) {
	e.pendingMu.Lock()
	delete(e.pending, id)
	e.pendingMu.Unlock()
}

func (e *Engine) failPending(err error) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	for id, ch := range e.pending {
		ch <- reply{err: err}
		delete(e.pending, id)
	}
}
