package signal

import (
	"sync"
	"time"
)

// Error shows an error toast in the UI behind the bridge.
func (e *Engine) Error(msg string) { e.toast("error", msg) }

// Warning shows a warning toast in the UI behind the bridge.
func (e *Engine) Warning(msg string) { e.toast("warning", msg) }

func (e *Engine) toast(level, msg string) {
	if !e.toasts.Allow(level + "|" + msg) {
		e.logger.Debug().Str("level", level).Str("message", msg).Msg("toast suppressed")
		return
	}
	e.logger.Info().Str("level", level).Str("message", msg).Msg("toast")
	if err := e.send("toast", "", map[string]any{"level": level, "message": msg}); err != nil {
		e.logger.Warn().Err(err).Msg("toast not delivered")
	}
}

// toastLimiter lets a given message through at most once per interval.
type toastLimiter struct {
	mu       sync.Mutex
	last     map[string]time.Time
	interval time.Duration
	now      func() time.Time
}

func newToastLimiter(interval time.Duration) *toastLimiter {
	return &toastLimiter{
		last:     make(map[string]time.Time),
		interval: interval,
		now:      time.Now,
	}
}

func (l *toastLimiter) Allow(key string) bool {
	if l.interval <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if t, ok := l.last[key]; ok && now.Sub(t) < l.interval {
		return false
	}
	l.last[key] = now

	for k, t := range l.last {
		if now.Sub(t) >= l.interval {
			delete(l.last, k)
		}
	}
	return true
}
