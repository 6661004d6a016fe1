package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/matst80/council-finder/pkg/cache"
	"github.com/matst80/council-finder/pkg/catalog"
	"github.com/matst80/council-finder/pkg/common"
	"github.com/matst80/council-finder/pkg/config"
	"github.com/matst80/council-finder/pkg/logging"
	"github.com/matst80/council-finder/pkg/server"
	"github.com/matst80/council-finder/pkg/source"
	"github.com/matst80/council-finder/pkg/store"
	"github.com/matst80/council-finder/pkg/tracking"
	"github.com/matst80/council-finder/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to the yaml config")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	logger, err := logging.New(*verbose)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	c, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		logger.Fatal("could not load catalog", zap.Error(err))
	}
	collator, err := cfg.Collator()
	if err != nil {
		logger.Fatal("invalid collation", zap.Error(err))
	}
	policy, err := cfg.Policy()
	if err != nil {
		logger.Fatal("invalid partial failure policy", zap.Error(err))
	}

	var rawCache cache.Store = cache.NewMemory()
	if cfg.RedisUrl != "" {
		redisCache := cache.NewCache(cfg.RedisUrl, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(context.Background()); err != nil {
			logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		} else {
			rawCache = redisCache
			defer redisCache.Close()
		}
	}
	raw := source.NewCachedSource(source.NewDiskSource(cfg.DataDir), rawCache, cfg.RawCacheTTL, logger)
	loader := store.NewLoader(c, raw, store.LoaderOptions{
		Policy:      policy,
		Concurrency: cfg.LoadConcurrency,
		Logger:      logger,
	})

	var tracker types.Tracking
	var conn *amqp.Connection
	if cfg.RabbitUrl != "" {
		if t, err := tracking.NewRabbitTracking(cfg.RabbitUrl, "council", logger); err != nil {
			logger.Warn("failed to connect to rabbitmq for tracking", zap.Error(err))
		} else {
			tracker = t
			defer t.Close()
		}
		conn, err = amqp.DialConfig(cfg.RabbitUrl, amqp.Config{
			Properties: amqp.NewConnectionProperties(),
		})
		if err != nil {
			logger.Warn("failed to connect to rabbitmq for data updates", zap.Error(err))
			conn = nil
		}
	}

	ws := server.NewWebServer(c, loader, server.Options{
		Collator:        collator,
		Cache:           rawCache,
		Raw:             raw,
		Tracking:        tracker,
		Logger:          logger,
		SessionLifetime: cfg.SessionLifetime,
	})
	if conn != nil {
		defer conn.Close()
		if err := ws.ListenForUpdates(conn, cfg.RabbitPrefix); err != nil {
			logger.Warn("failed to listen for data updates", zap.Error(err))
		} else {
			logger.Info("listening for data updates", zap.String("prefix", cfg.RabbitPrefix))
		}
	}

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			ws.PruneSessions()
		}
	}()

	debug := &http.Server{Addr: cfg.DebugAddress, Handler: server.DebugRoutes()}
	go func() {
		if err := debug.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("debug listener failed", zap.Error(err))
		}
	}()

	timeouts := cfg.TimeoutConfig()
	api := common.NewServerWithTimeouts(&http.Server{Addr: cfg.ListenAddress, Handler: ws.Routes()}, timeouts)
	common.RunServerWithShutdown(logger, api, "council api", timeouts.Shutdown, timeouts.Hook,
		func(ctx context.Context) error {
			return debug.Shutdown(ctx)
		},
	)
}
