package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/VideoClient/internal/adapters/rtc"
	"github.com/dkeye/VideoClient/internal/core"
	"github.com/dkeye/VideoClient/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type Options struct {
	SessionID    domain.SessionID
	WriteTimeout time.Duration
	SendBuffer   int
	WebRTC       webrtc.Configuration
	// ToastInterval suppresses identical toasts repeated within it. Zero disables.
	ToastInterval time.Duration
}

func (o *Options) withDefaults() {
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
	if o.WebRTC.ICEServers == nil {
		o.WebRTC = rtc.DefaultWebRTCConfig()
	}
}

type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// Engine is a core.SessionEngine backed by a websocket bridge to the media SDK.
// Requests are correlated by id; notifications arrive as "event" frames.
type Engine struct {
	conn   *wsConn
	opts   Options
	logger zerolog.Logger
	cancel context.CancelFunc

	events   chan core.Notification
	done     chan struct{}
	emitMu   sync.RWMutex
	emitDone bool

	pendingMu sync.Mutex
	pending   map[string]chan reply

	streamMu sync.RWMutex
	stream   *mediaStream

	peerMu sync.Mutex
	peer   *rtc.Peer

	toasts    *toastLimiter
	closeOnce sync.Once
}

// Dial connects to the bridge at url.
func Dial(ctx context.Context, url string, header http.Header, opts Options) (*Engine, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "signal").Str("url", url).Msg("engine bridge connected")
	return New(ws, opts), nil
}

// New starts the read and write pumps over an established websocket.
func New(ws *websocket.Conn, opts Options) *Engine {
	opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		conn:    &wsConn{conn: ws, send: make(chan []byte, opts.SendBuffer)},
		opts:    opts,
		logger:  log.With().Str("module", "signal").Str("sid", string(opts.SessionID)).Logger(),
		cancel:  cancel,
		events:  make(chan core.Notification, opts.SendBuffer),
		done:    make(chan struct{}),
		pending: make(map[string]chan reply),
		toasts:  newToastLimiter(opts.ToastInterval),
	}
	go e.writePump(ctx)
	go e.readPump(ctx)
	return e
}

func (e *Engine) Events() <-chan core.Notification { return e.events }

// MediaStream returns nil until a join has succeeded.
func (e *Engine) MediaStream() core.MediaStream {
	e.streamMu.RLock()
	defer e.streamMu.RUnlock()
	if e.stream == nil {
		return nil
	}
	return e.stream
}

// emit forwards n to Events unless the engine is shutting down.
func (e *Engine) emit(n core.Notification) {
	e.emitMu.RLock()
	defer e.emitMu.RUnlock()
	if e.emitDone {
		return
	}
	select {
	case e.events <- n:
	case <-e.done:
	}
}

// tryEmit is emit without waiting for a reader.
func (e *Engine) tryEmit(n core.Notification) {
	e.emitMu.RLock()
	defer e.emitMu.RUnlock()
	if e.emitDone {
		return
	}
	select {
	case e.events <- n:
	default:
		e.logger.Warn().Str("kind", n.Kind()).Msg("event stream full, notification dropped")
	}
}

// Close stops the pumps, the media peer and the event stream. Safe to call more than once.
func (e *Engine) Close() error {
	e.shutdown()
	return nil
}

func (e *Engine) shutdown() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.cancel()
		e.conn.Close()
		e.closePeer()
		e.failPending(ErrConnClosed)

		e.emitMu.Lock()
		e.emitDone = true
		close(e.events)
		e.emitMu.Unlock()
		e.logger.Info().Msg("engine closed")
	})
}

var (
	_ core.SessionEngine = (*Engine)(nil)
	_ core.Toaster       = (*Engine)(nil)
	_ core.MediaStream   = (*mediaStream)(nil)
)
