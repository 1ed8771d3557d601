package errx

import (
	"fmt"
	"sync"
)

// Definition is the shape used to declare an error code up front
type Definition struct {
	Code       string `json:"code" yaml:"code" validate:"required"`
	StatusCode int    `json:"statusCode" yaml:"statusCode" validate:"gte=400,lte=599"`
	Message    string `json:"message" yaml:"message" validate:"required"`
}

// ErrorDefinition is a registered error code with its internal id
type ErrorDefinition struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// Registry holds the error codes known to an application.
//
// A code is registered once. Registering it again returns the id allocated
// the first time and leaves the stored status and message untouched; there is
// no update path.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*ErrorDefinition
	order []string
}

// NewRegistry creates a registry and registers the presets in order
func NewRegistry(presets ...Definition) *Registry {
	r := &Registry{
		defs: make(map[string]*ErrorDefinition, len(presets)),
	}
	for _, p := range presets {
		r.Register(p.Code, p.StatusCode, p.Message)
	}
	return r
}

// Register adds an error code and returns its id.
// The first registration of a code wins.
func (r *Registry) Register(code string, statusCode int, message string) string {
	id, _ := r.RegisterIfAbsent(code, statusCode, message)
	return id
}

// RegisterIfAbsent is Register that also reports whether this call
// inserted the code. Check and insert happen under one lock.
func (r *Registry) RegisterIfAbsent(code string, statusCode int, message string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if def, ok := r.defs[code]; ok {
		return def.ID, false
	}

	id := fmt.Sprintf("ERR-%d", len(r.defs)+1)
	r.defs[code] = &ErrorDefinition{
		ID:         id,
		Code:       code,
		StatusCode: statusCode,
		Message:    message,
	}
	r.order = append(r.order, code)
	return id, true
}

// Get looks up a registered error code
func (r *Registry) Get(code string) (ErrorDefinition, bool) {
	if r == nil {
		return ErrorDefinition{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[code]
	if !ok {
		return ErrorDefinition{}, false
	}
	return *def, true
}

// Definitions returns every registered error in registration order
func (r *Registry) Definitions() []ErrorDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ErrorDefinition, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, *r.defs[code])
	}
	return out
}

// Len returns the number of registered codes
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
