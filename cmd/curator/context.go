package main

import (
	"log/slog"
	"strings"
	"sync"

	"curator/internal/batch"
	"curator/internal/config"
	"curator/internal/documents"
	"curator/internal/importer"
	"curator/internal/logging"
	"curator/internal/processor"
	"curator/internal/reconcile"
	"curator/internal/records"
	"curator/internal/services/curation"
	"curator/internal/services/openalex"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// environment bundles the stores and clients a command needs. Callers must
// Close it when done.
type environment struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *records.SQLiteStore
	docs   *documents.Store
}

func (c *commandContext) openEnvironment() (*environment, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := records.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &environment{
		cfg:    cfg,
		logger: logger,
		store:  store,
		docs:   documents.NewStore(cfg),
	}, nil
}

func (e *environment) Close() {
	_ = e.store.Close()
}

func (e *environment) curationClient() *curation.Client {
	return curation.NewClient(curation.Config{
		BaseURL:                e.cfg.Curation.BaseURL,
		ClassifyTimeoutSeconds: e.cfg.Curation.ClassifyTimeoutSeconds,
		ExtractTimeoutSeconds:  e.cfg.Curation.ExtractTimeoutSeconds,
	})
}

func (e *environment) processor() *processor.Processor {
	client := e.curationClient()
	return processor.New(e.cfg, e.store, e.docs, client, client, e.logger)
}

func (e *environment) coordinator() *batch.Coordinator {
	return batch.New(e.cfg, e.store, e.processor(), e.logger)
}

func (e *environment) importer() *importer.Importer {
	client := e.curationClient()
	return importer.New(e.cfg, e.store, e.docs, client, client, e.logger)
}

func (e *environment) reconciler() *reconcile.Reconciler {
	return reconcile.New(e.cfg, e.store, e.docs, e.logger)
}

func (e *environment) searchClient() *openalex.Client {
	return openalex.NewClient(openalex.Config{
		BaseURL:      e.cfg.Search.BaseURL,
		ContactEmail: e.cfg.Search.ContactEmail,
		PageLimit:    e.cfg.Search.PageLimit,
	})
}
