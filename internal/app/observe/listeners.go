// Package observe is the subscribe/notify registry shared by the session state owners.
package observe

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Listeners fans a value out to registered callbacks in subscription order.
// The zero value is ready to use.
type Listeners[T any] struct {
	mu     sync.Mutex
	nextID int
	ids    []int
	fns    map[int]func(T)
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is safe.
func (l *Listeners[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	l.mu.Lock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.nextID
	l.nextID++
	l.ids = append(l.ids, id)
	l.fns[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.fns, id)
			for i, v := range l.ids {
				if v == id {
					l.ids = append(l.ids[:i], l.ids[i+1:]...)
					break
				}
			}
		})
	}
}

// Notify calls every listener with v. A panicking listener is logged and skipped.
func (l *Listeners[T]) Notify(v T) {
	l.mu.Lock()
	snapshot := make([]func(T), 0, len(l.ids))
	for _, id := range l.ids {
		snapshot = append(snapshot, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range snapshot {
		func(cb func(T)) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("module", "app.observe").Interface("panic", r).Msg("listener panicked")
				}
			}()
			cb(v)
		}(fn)
	}
}

// Len reports the number of live subscriptions.
func (l *Listeners[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}
