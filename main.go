package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/api"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/bridge"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/config"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/handler"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/metrics"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/storage"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/summarizer"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/sweeper"
	pkgconfig "github.com/RodolfoMedinaCS/LinkLensV4/pkg/config"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/httpclient"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/redisclient"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/retry"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	db, err := connectDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	// Redis backs the session bridge; the ingestion path works without it.
	redisClient := connectRedis(cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	return runServer(cfg, log, db, redisClient)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	configPath := pkgconfig.GetConfigPath(config.DefaultPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// connectDatabase opens and verifies a database connection.
func connectDatabase(cfg *config.Config, log logger.Logger) (*sqlx.DB, error) {
	db, err := storage.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Name),
	)
	return db, nil
}

// connectRedis connects to Redis, or returns nil when unconfigured or
// unreachable. The bridge is then disabled.
func connectRedis(cfg *config.Config, log logger.Logger) *redis.Client {
	client, err := redisclient.New(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, session bridge disabled", logger.Error(err))
		return nil
	}
	log.Info("Redis connected", logger.String("address", cfg.Redis.Address))
	return client
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(cfg *config.Config, log logger.Logger, db *sqlx.DB, redisClient *redis.Client) int {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	store := storage.NewLinkStore(db, log)

	// Summarizer dispatch runs off the request path on a bounded queue.
	sumClient := summarizer.NewClient(cfg.Summarizer, httpclient.New(&httpclient.Config{
		Timeout: cfg.Dispatch.JobTimeout,
	}))
	retryCfg := retry.DefaultConfig()
	if cfg.Dispatch.MaxAttempts > 0 {
		retryCfg.MaxAttempts = cfg.Dispatch.MaxAttempts
	}
	queue := summarizer.NewDispatcher(sumClient, store, log, m, summarizer.DispatcherOptions{
		QueueSize:  cfg.Dispatch.QueueSize,
		JobTimeout: cfg.Dispatch.JobTimeout,
		Retry:      &retryCfg,
	})
	queue.Start()
	defer queue.Stop()

	sw := sweeper.New(cfg.Sweeper, store, log, m)
	if err := sw.Start(); err != nil {
		log.Error("Failed to start sweeper", logger.Error(err))
		return 1
	}
	defer sw.Stop()

	serverOpts := api.Options{
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
		Port:        cfg.Service.Port,
		Debug:       cfg.Service.Debug,
		CORSOrigins: cfg.CORSOrigins,
		JWTSecret:   cfg.Auth.JWTSecret,
		Links:       handler.NewLinksHandler(store, queue, cfg.Summarizer, log, m),
		Logger:      log,
		Registry:    registry,
		DBPing:      db.Ping,
	}

	stopBridge := startBridge(cfg, log, redisClient, &serverOpts)
	defer stopBridge()

	server := api.NewServer(serverOpts)

	log.Info("LinkLens ingestion starting",
		logger.Int("port", cfg.Service.Port),
	)

	if err := server.Run(); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("LinkLens ingestion exited cleanly")
	return 0
}

// startBridge launches the session bridge when Redis is available. It
// returns a stop function; without Redis the bridge stays off.
func startBridge(cfg *config.Config, log logger.Logger, redisClient *redis.Client, opts *api.Options) func() {
	if redisClient == nil {
		return func() {}
	}

	opts.RedisPing = func() error {
		return redisClient.Ping(context.Background()).Err()
	}

	b := bridge.New(cfg.Bridge, redisClient, log)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := b.Run(ctx); err != nil {
			log.Error("Session bridge stopped", logger.Error(err))
		}
	}()
	return cancel
}
