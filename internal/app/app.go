// internal/app/app.go
package app

import (
	"context"
	"fmt"

	"github.com/newthinker/scribe/internal/api"
	"github.com/newthinker/scribe/internal/assembler"
	"github.com/newthinker/scribe/internal/cache"
	"github.com/newthinker/scribe/internal/client"
	"github.com/newthinker/scribe/internal/config"
	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/metrics"
	"github.com/newthinker/scribe/internal/provider/factory"
	"github.com/newthinker/scribe/internal/router"
	"github.com/newthinker/scribe/internal/session"
	"github.com/newthinker/scribe/internal/storage/archive"
	"go.uber.org/zap"
)

// App wires configuration into the running service: providers, router,
// routed client, session engine, and the HTTP server.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Registry
	router  *router.Router
	client  *client.Client
	engine  *session.Engine
	server  *api.Server
}

// New builds the full object graph from configuration.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	r := router.New(logger)
	registered := 0
	for name, pc := range cfg.Providers {
		if !pc.Enabled {
			continue
		}
		kind := core.ProviderKind(name)
		pcfg, adapter, err := factory.New(kind, pc, logger)
		if err != nil {
			return nil, fmt.Errorf("building provider %s: %w", name, err)
		}
		if err := r.Register(pcfg, adapter); err != nil {
			return nil, fmt.Errorf("registering provider %s: %w", name, err)
		}
		registered++
		logger.Info("provider registered",
			zap.String("provider", name),
			zap.String("model", pcfg.Model),
			zap.Float64("cost_per_1k", pcfg.CostPer1KTokens),
			zap.Float64("quality", pcfg.QualityScore))
	}
	if registered == 0 {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("no providers enabled"))
	}

	opts := client.Options{
		Metrics:    reg,
		MaxRetries: cfg.Routing.MaxRetries,
	}
	if cfg.Cache.Enabled {
		opts.Cache = cache.NewMemory(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}
	c := client.New(r, opts, logger)

	strategy := core.Strategy(cfg.Routing.Strategy)
	if strategy == "" {
		strategy = core.StrategyBalanced
	}

	docs := assembler.New(c, strategy, reg, logger)
	store := session.NewMemoryStore(cfg.Session.MaxSessions)
	engine := session.NewEngine(c, store, docs, session.Config{
		MaxQuestions: cfg.Session.MaxQuestions,
		Strategy:     strategy,
	}, logger)
	if reg != nil {
		engine.WithMetrics(reg)
	}

	cold, err := buildArchive(cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("building archive: %w", err)
	}
	if cold != nil {
		engine.WithArchive(cold)
	}

	server := api.NewServer(api.Config{
		Host:   cfg.Server.Host,
		Port:   cfg.Server.Port,
		APIKey: cfg.Server.APIKey,
	}, engine, c, reg, logger)

	return &App{
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
		router:  r,
		client:  c,
		engine:  engine,
		server:  server,
	}, nil
}

func buildArchive(cfg config.ArchiveConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "localfs":
		return archive.NewLocalFS(cfg.Path)
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive type %q", cfg.Type))
	}
}

// ValidateProviders probes every registered backend and returns
// reachability by provider.
func (a *App) ValidateProviders(ctx context.Context) map[core.ProviderKind]bool {
	result := make(map[core.ProviderKind]bool)
	for _, c := range a.router.Candidates() {
		reachable := c.Provider.ValidateReachability(ctx)
		result[c.Config.Kind] = reachable
		if reachable {
			a.logger.Info("provider reachable", zap.String("provider", string(c.Config.Kind)))
		} else {
			a.logger.Warn("provider unreachable", zap.String("provider", string(c.Config.Kind)))
		}
	}
	return result
}

// Serve starts the HTTP server and blocks until it stops.
func (a *App) Serve() error {
	return a.server.Start()
}

// Shutdown gracefully stops the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Engine returns the session engine.
func (a *App) Engine() *session.Engine {
	return a.engine
}

// Client returns the routed client.
func (a *App) Client() *client.Client {
	return a.client
}
