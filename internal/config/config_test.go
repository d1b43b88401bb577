package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Batch.Workers != 1 {
		t.Fatalf("default workers = %d, want 1", cfg.Batch.Workers)
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
documents_dir = "` + filepath.Join(dir, "docs") + `"
store_path = "` + filepath.Join(dir, "corpus.db") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[correlate]
overlap_threshold = 0.6

[batch]
workers = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Correlate.OverlapThreshold != 0.6 {
		t.Fatalf("overlap threshold = %v, want 0.6", cfg.Correlate.OverlapThreshold)
	}
	if cfg.Batch.Workers != 4 {
		t.Fatalf("workers = %d, want 4", cfg.Batch.Workers)
	}
	if cfg.Paths.ApprovedDir != filepath.Join(dir, "docs", "approved") {
		t.Fatalf("approved dir = %q, want under documents dir", cfg.Paths.ApprovedDir)
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[correlate]\noverlap_threshold = 1.5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "overlap_threshold") {
		t.Fatalf("expected threshold validation error, got %v", err)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandPath("~/corpus")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "corpus") {
		t.Fatalf("ExpandPath = %q", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.DocumentsDir = filepath.Join(dir, "docs")
	cfg.Paths.ApprovedDir = filepath.Join(dir, "docs", "approved")
	cfg.Paths.RejectedDir = filepath.Join(dir, "docs", "rejected")
	cfg.Paths.StorePath = filepath.Join(dir, "state", "corpus.db")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, p := range []string{cfg.Paths.DocumentsDir, cfg.Paths.ApprovedDir, cfg.Paths.RejectedDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.StorePath)} {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			t.Fatalf("directory %q missing: %v", p, err)
		}
	}
}
