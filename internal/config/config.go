package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	DocumentsDir string `toml:"documents_dir"`
	ApprovedDir  string `toml:"approved_dir"`
	RejectedDir  string `toml:"rejected_dir"`
	StorePath    string `toml:"store_path"`
	LogDir       string `toml:"log_dir"`
}

// Curation contains configuration for the external classification and
// extraction service.
type Curation struct {
	BaseURL                string `toml:"base_url"`
	ClassifyTimeoutSeconds int    `toml:"classify_timeout_seconds"`
	ExtractTimeoutSeconds  int    `toml:"extract_timeout_seconds"`
	ApprovalField          string `toml:"approval_field"`
	FeedbackField          string `toml:"feedback_field"`
}

// Correlate contains tuning for record-to-file correlation.
type Correlate struct {
	// OverlapThreshold is the minimum title-token overlap ratio for a
	// filename match. Different corpora need different values; 0.4 suits
	// manually named uploads, 0.6 suits slug-derived names.
	OverlapThreshold float64 `toml:"overlap_threshold"`
	// AuthorYearScore is the score assigned when the author+year fallback
	// accepts a candidate despite a low token overlap.
	AuthorYearScore float64 `toml:"author_year_score"`
	// AuthorYearOverride controls whether the fallback may override a
	// below-threshold overlap result at all.
	AuthorYearOverride bool `toml:"author_year_override"`
	MinTokenLength     int  `toml:"min_token_length"`
}

// Batch contains configuration for batch processing.
type Batch struct {
	// Workers bounds concurrent record processing. 1 means strictly
	// sequential, which is the crash-safest default.
	Workers int `toml:"workers"`
}

// Search contains configuration for the external literature search service.
type Search struct {
	BaseURL      string `toml:"base_url"`
	ContactEmail string `toml:"contact_email"`
	PageLimit    int    `toml:"page_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config aggregates every setting the curator CLI and pipeline consume.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Curation  Curation  `toml:"curation"`
	Correlate Correlate `toml:"correlate"`
	Batch     Batch     `toml:"batch"`
	Search    Search    `toml:"search"`
	Logging   Logging   `toml:"logging"`
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/curator/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("curator.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the document partitions and log directory.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DocumentsDir, c.Paths.ApprovedDir, c.Paths.RejectedDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Paths.StorePath); strings.TrimSpace(dir) != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
