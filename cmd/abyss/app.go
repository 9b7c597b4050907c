package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jwulff/abyss-go/internal/cache"
	"github.com/jwulff/abyss-go/internal/config"
	"github.com/jwulff/abyss-go/internal/dashboard"
	"github.com/jwulff/abyss-go/internal/homa"
	"github.com/jwulff/abyss-go/internal/logging"
	"github.com/jwulff/abyss-go/internal/metrics"
	"github.com/jwulff/abyss-go/internal/storage"
	"github.com/jwulff/abyss-go/internal/storage/sqlite"
	"github.com/jwulff/abyss-go/internal/uigf"
	"github.com/jwulff/abyss-go/internal/upstream"
)

// app holds the dependencies shared by the subcommands.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	closers []func() error
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	opts := logging.OptionsFromEnv()
	if verbose {
		opts.Level = "debug"
	}
	logger, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, path := range cfg.EnvFiles {
		logger.Debug("loaded environment file", zap.String("path", path))
	}

	metrics.MustRegister()
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// getter builds the HTTP getter, backed by Redis when it is configured.
func (a *app) getter() *upstream.Getter {
	g := upstream.NewGetter(a.cfg.Homa.Timeout)
	g.Logger = a.logger.Named("upstream")

	if !a.cfg.Redis.Enabled() {
		return g
	}
	client, err := cache.NewRedisClient(a.cfg.Redis)
	if err != nil {
		a.logger.Warn("redis unavailable, response cache disabled", zap.Error(err))
		return g
	}
	redisCache := cache.NewRedis(client)
	a.closers = append(a.closers, redisCache.Close)
	g.Cache = redisCache
	g.TTL = a.cfg.Redis.TTL
	a.logger.Info("response cache enabled", zap.String("host", a.cfg.Redis.Host))
	return g
}

// openStore opens the snapshot archive. It returns nil when archiving is
// disabled.
func (a *app) openStore() (storage.Store, error) {
	if a.cfg.Archive.Path == "" {
		return nil, nil
	}
	store, err := sqlite.NewFileStore(a.cfg.Archive.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", a.cfg.Archive.Path, err)
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// loader wires the API clients into a dashboard loader. store may be nil.
func (a *app) loader(store storage.Store) *dashboard.Loader {
	g := a.getter()
	return dashboard.NewLoader(
		homa.NewClient(a.cfg.Homa.BaseURL, g),
		uigf.NewClient(a.cfg.UIGF.BaseURL, g),
		a.cfg.UIGF.Lang,
		store,
		a.logger.Named("loader"),
	)
}

// fetchTimeout bounds one-shot commands.
func fetchTimeout(cfg config.Config) time.Duration {
	timeout := cfg.Homa.Timeout
	if timeout <= 0 {
		timeout = upstream.DefaultTimeout
	}
	return 3 * timeout
}

func withApp(run func(ctx context.Context, a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout(a.cfg))
	defer cancel()
	return run(ctx, a)
}
