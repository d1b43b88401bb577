package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCuration()
	c.normalizeCorrelate()
	c.normalizeSearch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DocumentsDir, err = expandPath(c.Paths.DocumentsDir); err != nil {
		return fmt.Errorf("paths.documents_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ApprovedDir) == "" {
		c.Paths.ApprovedDir = filepath.Join(c.Paths.DocumentsDir, "approved")
	}
	if c.Paths.ApprovedDir, err = expandPath(c.Paths.ApprovedDir); err != nil {
		return fmt.Errorf("paths.approved_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RejectedDir) == "" {
		c.Paths.RejectedDir = filepath.Join(c.Paths.DocumentsDir, "rejected")
	}
	if c.Paths.RejectedDir, err = expandPath(c.Paths.RejectedDir); err != nil {
		return fmt.Errorf("paths.rejected_dir: %w", err)
	}
	if c.Paths.StorePath, err = expandPath(c.Paths.StorePath); err != nil {
		return fmt.Errorf("paths.store_path: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCuration() {
	c.Curation.BaseURL = strings.TrimRight(strings.TrimSpace(c.Curation.BaseURL), "/")
	if c.Curation.ClassifyTimeoutSeconds <= 0 {
		c.Curation.ClassifyTimeoutSeconds = defaultClassifyTimeout
	}
	if c.Curation.ExtractTimeoutSeconds <= 0 {
		c.Curation.ExtractTimeoutSeconds = defaultExtractTimeout
	}
	if strings.TrimSpace(c.Curation.ApprovalField) == "" {
		c.Curation.ApprovalField = defaultApprovalFieldName
	}
	if strings.TrimSpace(c.Curation.FeedbackField) == "" {
		c.Curation.FeedbackField = defaultFeedbackFieldName
	}
}

func (c *Config) normalizeCorrelate() {
	if c.Correlate.OverlapThreshold == 0 {
		c.Correlate.OverlapThreshold = defaultOverlapThreshold
	}
	if c.Correlate.AuthorYearScore == 0 {
		c.Correlate.AuthorYearScore = defaultAuthorYearScore
	}
	if c.Correlate.MinTokenLength <= 0 {
		c.Correlate.MinTokenLength = defaultMinTokenLength
	}
}

func (c *Config) normalizeSearch() {
	c.Search.BaseURL = strings.TrimRight(strings.TrimSpace(c.Search.BaseURL), "/")
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = defaultSearchBaseURL
	}
	if c.Search.PageLimit <= 0 {
		c.Search.PageLimit = defaultSearchPageLimit
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
