// Package broadcast is the auth-state observable: subscribers are told when
// the current principal changes (login, registration, logout). It replaces
// the implicit callback registry the presentation layer used to hold.
package broadcast

import (
	"sync"

	"portaria/internal/auth/models"
)

// Broadcaster fans the current principal out to subscribers. A nil operator
// means "logged out".
type Broadcaster struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]func(*models.Operator)
}

func New() *Broadcaster {
	return &Broadcaster{subscribers: make(map[int]func(*models.Operator))}
}

// Subscribe registers fn and returns an unsubscribe handle. fn is invoked
// synchronously on every Notify until the handle is called.
func (b *Broadcaster) Subscribe(fn func(*models.Operator)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// Notify delivers the current principal to every subscriber.
func (b *Broadcaster) Notify(operator *models.Operator) {
	b.mu.Lock()
	fns := make([]func(*models.Operator), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(operator)
	}
}
