package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/wealthsense/internal/logger"
	"github.com/google/uuid"
)

type registryEntry struct {
	controller *Controller
	expiresAt  time.Time
}

// Registry maps API session IDs to controllers. Entries expire ttl after
// creation, matching the lifetime of the session token.
type Registry struct {
	newController func() *Controller
	ttl           time.Duration
	now           func() time.Time

	mu      sync.RWMutex
	entries map[string]registryEntry
}

// NewRegistry creates a registry that builds controllers with newController.
// A non-positive ttl keeps sessions until they are dropped.
func NewRegistry(newController func() *Controller, ttl time.Duration) *Registry {
	return &Registry{
		newController: newController,
		ttl:           ttl,
		now:           time.Now,
		entries:       make(map[string]registryEntry),
	}
}

// Create registers a new controller in mode and returns its ID.
func (r *Registry) Create(ctx context.Context, mode Mode) (string, *Controller, error) {
	c := r.newController()
	if err := c.SwitchMode(ctx, mode); err != nil {
		return "", nil, fmt.Errorf("Create: %w", err)
	}

	id := uuid.NewString()
	entry := registryEntry{controller: c}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = entry
	return id, c, nil
}

func (e registryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Get returns the controller registered under id. Expired sessions are
// dropped and reported as missing.
func (r *Registry) Get(id string) (*Controller, bool) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(r.now()) {
		r.Drop(id)
		return nil, false
	}
	return e.controller, true
}

// Drop closes and forgets the controller registered under id.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if ok {
		e.controller.Close()
	}
}

// Sweep drops every expired session and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()

	var stale []*Controller
	r.mu.Lock()
	for id, e := range r.entries {
		if e.expired(now) {
			stale = append(stale, e.controller)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	log := logger.FromContext(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Int("live", r.Len()).Msg("Expired sessions swept")
			}
		}
	}
}

// Len returns the number of registered sessions, expired or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
