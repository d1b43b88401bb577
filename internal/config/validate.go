package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCuration(); err != nil {
		return err
	}
	if err := c.validateCorrelate(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DocumentsDir) == "" {
		return errors.New("paths.documents_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StorePath) == "" {
		return errors.New("paths.store_path must be set")
	}
	if c.Paths.ApprovedDir == c.Paths.RejectedDir {
		return errors.New("paths.approved_dir and paths.rejected_dir must differ")
	}
	for _, dir := range []string{c.Paths.ApprovedDir, c.Paths.RejectedDir} {
		if dir == c.Paths.DocumentsDir {
			return errors.New("approved/rejected directories must not equal paths.documents_dir")
		}
	}
	return nil
}

func (c *Config) validateCuration() error {
	if strings.TrimSpace(c.Curation.BaseURL) == "" {
		return errors.New("curation.base_url must be set")
	}
	return nil
}

func (c *Config) validateCorrelate() error {
	if c.Correlate.OverlapThreshold < 0 || c.Correlate.OverlapThreshold > 1 {
		return errors.New("correlate.overlap_threshold must be between 0 and 1")
	}
	if c.Correlate.AuthorYearScore < 0 || c.Correlate.AuthorYearScore > 1 {
		return errors.New("correlate.author_year_score must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
