package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/soundlink/conductor/internal/catalog"
	"github.com/soundlink/conductor/internal/config"
	"github.com/soundlink/conductor/internal/httpserver"
	"github.com/soundlink/conductor/internal/httpserver/deps"
	"github.com/soundlink/conductor/internal/logger"
	"github.com/soundlink/conductor/internal/node"
	"github.com/soundlink/conductor/internal/orchestrator"
	"github.com/soundlink/conductor/internal/redis"
	"github.com/soundlink/conductor/internal/scheduler"
	"github.com/soundlink/conductor/internal/sources/roster"
	redisstore "github.com/soundlink/conductor/internal/store/redis"
	"github.com/soundlink/conductor/internal/version"
	"github.com/soundlink/conductor/internal/voice"
)

// CatalogClients carries the externally provided catalog collaborators. A
// nil client leaves that collaborator out even when its config flag enables
// it: the registry only ever holds enabled instances.
type CatalogClients struct {
	Spotify    catalog.Client
	AppleMusic catalog.Client
	Deezer     catalog.Client
}

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	redisClient  *goredis.Client
	pool         *node.Pool
	watcher      *scheduler.HealthWatcher
	orchestrator *orchestrator.Orchestrator
}

func New(clients CatalogClients) *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Roster is structural configuration: fail fast, before anything connects.
	rosterFile, err := roster.NewLoader(cfg.RosterFile).Load()
	if err != nil {
		loggerClient.Errorf("invalid node roster: %v", err)
		os.Exit(1)
	}

	linkOpts := node.Options{
		ConnectAttempts: cfg.ConnectAttempts,
		RetryInterval:   cfg.RetryInterval,
		RequestTimeout:  cfg.RequestTimeout,
	}
	links := make([]*node.Link, 0, len(rosterFile.Nodes))
	for _, nc := range rosterFile.NodeConfigs() {
		links = append(links, node.NewLink(nc, linkOpts, loggerClient))
	}

	pool, err := node.NewPool(links, cfg.SelectionWindow)
	if err != nil {
		loggerClient.Errorf("failed to build node pool: %v", err)
		os.Exit(1)
	}

	// Optional persistent search store.
	var redisClient *goredis.Client
	var store *redisstore.Store
	if cfg.RedisAddr != "" {
		loggerClient.Infof("connecting to redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDialTimeout,
			ReadTimeout:    cfg.RedisReadTimeout,
			WriteTimeout:   cfg.RedisWriteTimeout,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("failed to connect to redis: %v", err)
			os.Exit(1)
		}
		store = redisstore.NewStore(redisClient)
	} else {
		loggerClient.Info("redis not configured, persistent search store disabled")
	}

	catalogs := buildCatalogs(cfg, clients, loggerClient)

	sessions := voice.NewRegistry(pool, rosterFile.RegionTable(), loggerClient)
	orch := orchestrator.New(pool, sessions, catalogs, store, loggerClient)

	sweepTrigger := make(chan struct{}, 1)
	watcher := scheduler.NewHealthWatcher(
		pool,
		loggerClient,
		cfg.HealthInterval,
		orch.ResumeNode,
		sweepTrigger,
	)

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		Orchestrator: orch,
		Pool:         pool,
		HealthSweep:  sweepTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       server,
		redisClient:  redisClient,
		pool:         pool,
		watcher:      watcher,
		orchestrator: orch,
	}
}

// buildCatalogs assembles the enabled collaborators in fixed priority order:
// spotify, apple music, deezer.
func buildCatalogs(cfg *config.Config, clients CatalogClients, log logger.Logger) *catalog.Registry {
	var sources []*catalog.Source

	add := func(name string, enabled bool, client catalog.Client, build func(catalog.Client) *catalog.Source) {
		if !enabled {
			return
		}
		if client == nil {
			log.Warn("catalog enabled but no client wired, skipping",
				logger.String("catalog", name))
			return
		}
		sources = append(sources, build(client))
	}

	add("spotify", cfg.SpotifyEnabled, clients.Spotify, catalog.NewSpotifySource)
	add("applemusic", cfg.AppleMusicEnabled, clients.AppleMusic, catalog.NewAppleMusicSource)
	add("deezer", cfg.DeezerEnabled, clients.Deezer, catalog.NewDeezerSource)

	log.Info("catalog collaborators registered", logger.Int("count", len(sources)))
	return catalog.NewRegistry(sources...)
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Conductor v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Conductor %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bring up the node links. A node that is down at startup is not fatal:
	// the health watcher keeps retrying in the background.
	for _, l := range a.pool.Links() {
		if err := l.Connect(ctx); err != nil {
			a.logger.Warn("node unavailable at startup",
				logger.String("node", l.ID()),
				logger.Error(err))
		}
	}
	if !a.pool.AnyConnected() {
		a.logger.Warn("no node connected at startup, requests will fail until one comes up")
	}

	a.watcher.Start(ctx)
	a.logger.Info("health watcher started",
		logger.Duration("interval", a.cfg.HealthInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.watcher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	for _, l := range a.pool.Links() {
		l.Close()
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}

	a.logger.Info("✅ Conductor stopped cleanly")
	return nil
}
