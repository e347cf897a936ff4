// Package sessions keeps one wizard orchestrator per browser session, keyed
// by the session cookie. Idle sessions are evicted by a janitor that runs for
// the lifetime of the lifecycle coordinator.
package sessions

import (
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/logomagic/internal/wizard"
	"github.com/JaimeStill/logomagic/pkg/lifecycle"
	"github.com/google/uuid"
)

// Factory builds the orchestrator for a new session.
type Factory func() *wizard.Orchestrator

// System resolves session ids to orchestrators.
type System interface {
	// Resolve returns the orchestrator for id, creating a new session when id
	// is empty, malformed, unknown, or expired. created reports which happened.
	Resolve(id string) (sid uuid.UUID, o *wizard.Orchestrator, created bool)
	Get(id uuid.UUID) (*wizard.Orchestrator, bool)
	Sweep() int
	Len() int
	Start(lc *lifecycle.Coordinator) error
}

// Config holds registry settings. Now defaults to time.Now.
type Config struct {
	TTL time.Duration
	Now func() time.Time
}

type entry struct {
	orchestrator *wizard.Orchestrator
	lastSeen     time.Time
}

type registry struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	factory Factory
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

func New(cfg Config, factory Factory, logger *slog.Logger) System {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &registry{
		entries: make(map[uuid.UUID]*entry),
		factory: factory,
		ttl:     cfg.TTL,
		now:     now,
		logger:  logger.With("system", "sessions"),
	}
}

func (r *registry) Resolve(id string) (uuid.UUID, *wizard.Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if sid, err := uuid.Parse(id); err == nil {
		if e, ok := r.entries[sid]; ok && !r.expired(e, now) {
			e.lastSeen = now
			return sid, e.orchestrator, false
		}
	}

	sid := uuid.New()
	e := &entry{orchestrator: r.factory(), lastSeen: now}
	r.entries[sid] = e
	r.logger.Debug("session created", "session", sid)

	return sid, e.orchestrator, true
}

func (r *registry) Get(id uuid.UUID) (*wizard.Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || r.expired(e, r.now()) {
		return nil, false
	}
	return e.orchestrator, true
}

// Sweep removes expired sessions and returns how many were removed.
// Sessions with a pipeline in flight are kept until it finishes.
func (r *registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, e := range r.entries {
		if !r.expired(e, now) || e.orchestrator.Snapshot().Loading {
			continue
		}
		delete(r.entries, id)
		removed++
	}

	if removed > 0 {
		r.logger.Info("expired sessions removed", "count", removed, "remaining", len(r.entries))
	}
	return removed
}

func (r *registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *registry) Start(lc *lifecycle.Coordinator) error {
	interval := sweepInterval(r.ttl)
	r.logger.Info("starting session janitor", "ttl", r.ttl, "interval", interval)

	lc.OnShutdown(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				r.logger.Info("session janitor stopped", "sessions", r.Len())
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	})

	return nil
}

func (r *registry) expired(e *entry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.lastSeen) > r.ttl
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}
