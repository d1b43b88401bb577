package testsupport

import (
	"path/filepath"
	"testing"

	"curator/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DocumentsDir = filepath.Join(base, "documents")
	cfg.Paths.ApprovedDir = filepath.Join(base, "documents", "approved")
	cfg.Paths.RejectedDir = filepath.Join(base, "documents", "rejected")
	cfg.Paths.StorePath = filepath.Join(base, "records.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithOverlapThreshold overrides the correlation overlap threshold.
func WithOverlapThreshold(threshold float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Correlate.OverlapThreshold = threshold
	}
}

// WithWorkers sets the batch worker count on the test config.
func WithWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Batch.Workers = workers
	}
}
