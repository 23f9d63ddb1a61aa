package analysis

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry holds the current parameter configuration and hands out
// immutable snapshots to analysis runs. Updates that fail validation
// are logged and discarded so the registry never carries partial state.
type Registry struct {
	mu  sync.RWMutex
	cfg Config
	log zerolog.Logger
}

// NewRegistry starts a registry at the built-in defaults.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{cfg: DefaultConfig(), log: log}
}

// Snapshot returns the current configuration. The returned Config is
// immutable, so callers may hold it across a whole run without locking.
func (r *Registry) Snapshot() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Update merges overrides into the named kind's parameters. On rejection
// the registry keeps its previous configuration.
func (r *Registry) Update(kind Kind, overrides Params) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := r.cfg.WithOverrides(kind, overrides)
	if err != nil {
		r.log.Warn().Err(err).Str("kind", string(kind)).Msg("parameter update rejected")
		return err
	}
	r.cfg = next
	r.log.Debug().Str("kind", string(kind)).Int("version", next.Version()).Msg("parameters updated")
	return nil
}

// Reset restores the built-in defaults for every kind.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = DefaultConfig()
}
