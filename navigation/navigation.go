// Package navigation models the "leave this page and start over somewhere else"
// operation that logout and session invalidation rely on.
package navigation

import (
	"context"
	"sync"
)

const (
	// Root is where logout sends the visitor
	Root = "/"
	// Login is where an invalidated session sends the visitor
	Login = "/login"
)

// Navigator performs a full session reset: all client state built for the current
// view is abandoned and the application starts again at location.
type Navigator interface {
	Reset(ctx context.Context, location string)
}

// Func adapts a function to the Navigator interface
type Func func(ctx context.Context, location string)

// Reset calls f
func (f Func) Reset(ctx context.Context, location string) {
	f(ctx, location)
}

// Recorder remembers every requested reset. The web front-end uses one per request
// and turns the last location into a redirect.
type Recorder struct {
	mu        sync.Mutex
	locations []string
}

var _ Navigator = (*Recorder)(nil)

// Reset records location
func (r *Recorder) Reset(_ context.Context, location string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations = append(r.locations, location)
}

// Location returns the most recent reset target
func (r *Recorder) Location() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.locations) == 0 {
		return "", false
	}
	return r.locations[len(r.locations)-1], true
}

// Count returns how many resets were requested
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locations)
}
