package config

import (
	"log/slog"
	"sync"
)

// Store owns the live configuration. Every read-modify-write happens inside
// one critical section so concurrent mutations never interleave.
type Store struct {
	mu     sync.RWMutex
	cfg    *Config
	logger *slog.Logger
}

// NewStore wraps cfg. A nil cfg starts from DefaultConfig.
func NewStore(cfg *Config, logger *slog.Logger) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{cfg: cfg, logger: logger}
}

// Snapshot returns a deep copy of the current configuration.
func (s *Store) Snapshot() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Replace swaps in a freshly loaded configuration.
func (s *Store) Replace(cfg *Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Update runs fn with exclusive access to the live configuration.
func (s *Store) Update(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cfg)
}

// IncrementField applies Config.IncrementField atomically. Unknown fields are
// logged and reported.
func (s *Store) IncrementField(name string, value int32) error {
	return s.mutate(func(c *Config) error { return c.IncrementField(name, value) }, "field", name, "value", value)
}

// DecrementField applies Config.DecrementField atomically.
func (s *Store) DecrementField(name string, value int32) error {
	return s.mutate(func(c *Config) error { return c.DecrementField(name, value) }, "field", name, "value", value)
}

// ToggleField applies Config.ToggleField atomically.
func (s *Store) ToggleField(name string) error {
	return s.mutate(func(c *Config) error { return c.ToggleField(name) }, "field", name)
}

func (s *Store) mutate(fn func(*Config) error, attrs ...any) error {
	s.mu.Lock()
	err := fn(s.cfg)
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("config change ignored", append(attrs, "error", err)...)
	}
	return err
}
