// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/jeranaias/toonchat/internal/askapi"
	"github.com/jeranaias/toonchat/internal/config"
	"github.com/jeranaias/toonchat/internal/logging"
	"github.com/jeranaias/toonchat/internal/session"
	"github.com/jeranaias/toonchat/internal/storage"
)

// Service is the ask service as the commands use it. Both *askapi.Client
// and *askapi.Stub implement it.
type Service interface {
	session.Asker
	Health(ctx context.Context) (*askapi.Health, error)
}

// App holds the components shared by every command.
type App struct {
	Config  *config.Config
	Log     zerolog.Logger
	Store   *storage.ThreadStore
	Service Service
	Ctrl    *session.Controller

	In  io.Reader
	Out io.Writer
	Err io.Writer

	JSON  bool
	Quiet bool

	closers []io.Closer
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// LoadConfig loads the configuration named by args, or the default file,
// and applies the --store override.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	if args.Store != "" {
		cfg.Storage.Driver = args.Store
		if err := cfg.Validate(); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}
	return cfg, nil
}

// =============================================================================
// WIRING
// =============================================================================

// NewApp opens the log, the storage backend and the ask service described
// by cfg. Close releases them.
func NewApp(ctx context.Context, cfg *config.Config, args Args) (*App, error) {
	app := &App{
		Config: cfg,
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		JSON:   args.JSON,
		Quiet:  args.Quiet,
	}

	if err := app.openLog(args); err != nil {
		app.Close()
		return nil, &ConfigError{Err: err}
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, NewCommandError("storage", "open", cfg.Storage.Driver, err)
	}
	app.closers = append(app.closers, backend)

	app.Store = storage.NewThreadStore(backend, storage.Options{
		Key:    cfg.Storage.Key,
		Logger: app.Log.With().Str("component", "store").Logger(),
	})
	app.Service = newService(cfg, app.Log)
	app.Ctrl = session.NewController(app.Store, app.Service, session.Options{
		Logger: app.Log.With().Str("component", "session").Logger(),
	})

	app.Log.Debug().
		Str("driver", backend.Name()).
		Str("base_url", cfg.Backend.BaseURL).
		Bool("stub", cfg.Backend.Stub).
		Msg("toonchat started")
	return app, nil
}

// openLog writes logs to the configured file so they never mix with the
// command output or the TUI.
func (a *App) openLog(args Args) error {
	level := a.Config.Log.Level
	switch {
	case args.Verbose:
		level = "debug"
	case args.Quiet:
		level = "error"
	}

	path := a.Config.Log.File
	if path == "" {
		p, err := a.Config.LogPath()
		if err != nil {
			return err
		}
		path = p
	}

	f, err := logging.OpenFile(path)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, f)

	log, err := logging.New(level, a.Config.Log.Format, f)
	if err != nil {
		return err
	}
	a.Log = log
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	path, err := cfg.StoragePath()
	if err != nil {
		return nil, err
	}
	return storage.Open(ctx, storage.Settings{
		Driver:         cfg.Storage.Driver,
		Path:           path,
		RedisURL:       cfg.Storage.RedisURL,
		RedisPrefix:    cfg.Storage.RedisPrefix,
		DynamoTable:    cfg.Storage.DynamoDBTable,
		DynamoRegion:   cfg.Storage.DynamoDBRegion,
		DynamoEndpoint: cfg.Storage.DynamoDBEndpoint,
	})
}

func newService(cfg *config.Config, log zerolog.Logger) Service {
	if cfg.Backend.Stub {
		return &askapi.Stub{}
	}
	return askapi.NewClientWithConfig(&askapi.ClientConfig{
		BaseURL:    cfg.Backend.BaseURL,
		AskPath:    cfg.Backend.AskPath,
		HealthPath: cfg.Backend.HealthPath,
		Timeout:    cfg.Backend.Timeout(),
		RateLimit:  cfg.Backend.RateLimit,
		Logger:     log.With().Str("component", "askapi").Logger(),
	})
}

// Watch starts a watcher on the record file. It returns nil without error
// when the backend is not file based.
func (a *App) Watch() (*storage.Watcher, error) {
	fb, ok := a.Store.Backend().(*storage.FileBackend)
	if !ok {
		return nil, nil
	}
	w, err := storage.NewWatcher(fb.Path(a.Store.Key()), 0, a.Log.With().Str("component", "watcher").Logger())
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, w)
	return w, nil
}

// Close releases everything NewApp opened, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
