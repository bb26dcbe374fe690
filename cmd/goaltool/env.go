package main

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"github.com/abozbere2001-collab/Nabd6/internal/config"
	"github.com/abozbere2001-collab/Nabd6/internal/docstore"
	"github.com/abozbere2001-collab/Nabd6/internal/errreport"
	"github.com/abozbere2001-collab/Nabd6/internal/localstore"
	"github.com/abozbere2001-collab/Nabd6/internal/logging"
	"github.com/abozbere2001-collab/Nabd6/internal/sportsapi"
	"go.uber.org/zap"
)

// env holds what a command needs, built on first use and released by close.
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	reporter *errreport.Reporter

	kv      *localstore.SQLite
	closers []func() error
}

func (g *globalCmd) env() (*env, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.ProjectID != "" {
		cfg.Project = g.ProjectID
	}
	logger, err := logging.New(cfg.Logging, g.Verbose)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, reporter: errreport.NewReporter(logger)}, nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Warn("error while closing", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}

func (e *env) store(ctx context.Context) (*docstore.Firestore, error) {
	if e.cfg.Project == "" {
		return nil, fmt.Errorf("no GCP project: set --project-id, GCP_PROJECT, or project in the configuration file")
	}
	client, err := fs.NewClient(ctx, e.cfg.Project)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, client.Close)
	return docstore.NewFirestore(client, e.reporter, e.logger), nil
}

func (e *env) local() (*localstore.SQLite, error) {
	if e.kv != nil {
		return e.kv, nil
	}
	kv, err := localstore.OpenSQLite(e.cfg.Local.Database)
	if err != nil {
		return nil, err
	}
	e.kv = kv
	e.closers = append(e.closers, kv.Close)
	return kv, nil
}

func (e *env) cache() (*localstore.Cache, error) {
	kv, err := e.local()
	if err != nil {
		return nil, err
	}
	return localstore.NewCache(kv, e.cfg.CacheTTL()), nil
}

func (e *env) api() (*sportsapi.Client, error) {
	if e.cfg.SportsAPI.Key == "" {
		return nil, fmt.Errorf("no sports API key: set SPORTS_API_KEY or sports_api.key in the configuration file")
	}
	cache, err := e.cache()
	if err != nil {
		return nil, err
	}
	return sportsapi.NewClient(sportsapi.ClientConfig{
		BaseURL:     e.cfg.SportsAPI.BaseURL,
		Key:         e.cfg.SportsAPI.Key,
		Timeout:     e.cfg.SportsAPITimeout(),
		Bookmaker:   e.cfg.SportsAPI.Bookmaker,
		Logger:      e.logger,
		SearchCache: cache,
	}), nil
}
