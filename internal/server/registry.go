package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/goliatone/go-formflow/pkg/prefs"
	"github.com/goliatone/go-formflow/pkg/session"
)

type entry struct {
	sess     *session.Session
	store    prefs.Store
	lastSeen time.Time
}

type openFunc func(ctx context.Context, visitorID string, r *http.Request) (*entry, error)

// registry holds one session per visitor and closes the idle ones.
type registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	idle    time.Duration
	now     func() time.Time
	open    openFunc
}

func newRegistry(idle time.Duration, now func() time.Time, open openFunc) *registry {
	return &registry{
		entries: make(map[string]*entry),
		idle:    idle,
		now:     now,
		open:    open,
	}
}

// get returns the visitor's session, opening one when needed. The boolean is
// true for a freshly opened session.
func (r *registry) get(ctx context.Context, visitorID string, req *http.Request) (*entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[visitorID]; ok {
		e.lastSeen = r.now()
		return e, false, nil
	}
	e, err := r.open(ctx, visitorID, req)
	if err != nil {
		return nil, false, err
	}
	e.lastSeen = r.now()
	r.entries[visitorID] = e
	return e, true, nil
}

// sweep closes sessions idle for longer than the idle TTL and returns how
// many were closed.
func (r *registry) sweep() int {
	r.mu.Lock()
	cutoff := r.now().Add(-r.idle)
	var stale []*entry
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, e := range stale {
		e.sess.Close()
	}
	return len(stale)
}

func (r *registry) each(fn func(*entry)) {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.Unlock()
	for _, e := range entries {
		fn(e)
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *registry) closeAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range entries {
		e.sess.Close()
	}
}
