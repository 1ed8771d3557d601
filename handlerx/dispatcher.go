// Package handlerx routes errors to custom recovery handlers by kind.
//
// A handler registered for a kind also serves every kind derived from it
// that has no handler of its own, so a single handler on errx.KindError acts
// as a catch-all while more specific kinds keep their own behaviour.
package handlerx

import (
	"sync"

	"github.com/Abraxas-365/exceptionx/errx"
	"github.com/Abraxas-365/exceptionx/hostx"
)

// Handler takes full ownership of the response for an error it matched
type Handler func(err error, host hostx.Host)

// Dispatcher holds one handler per exact kind
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[*errx.Kind]Handler
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[*errx.Kind]Handler),
	}
}

// Register sets the handler for kind, replacing any previous one
func (d *Dispatcher) Register(kind *errx.Kind, handler Handler) {
	if kind == nil || handler == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = handler
}

// Unregister removes the handler for exactly kind
func (d *Dispatcher) Unregister(kind *errx.Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, kind)
}

// Handler returns the handler of the most specific kind in err's ancestry
func (d *Dispatcher) Handler(err error) (Handler, bool) {
	if d == nil {
		return nil, false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if len(d.handlers) == 0 {
		return nil, false
	}
	for _, kind := range errx.KindOf(err).Ancestry() {
		if h, ok := d.handlers[kind]; ok {
			return h, true
		}
	}
	return nil, false
}

// Len returns the number of registered handlers
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers)
}
