package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/locus-lab/project-locus/internal/buffer"
	corecfg "github.com/locus-lab/project-locus/internal/core/config"
	"github.com/locus-lab/project-locus/internal/core/storage/postgres"
	"github.com/locus-lab/project-locus/internal/ingest"
	"github.com/locus-lab/project-locus/internal/migrations"
	"github.com/locus-lab/project-locus/internal/publish"
	"github.com/locus-lab/project-locus/internal/server"
	"github.com/locus-lab/project-locus/internal/service"
	"github.com/locus-lab/project-locus/internal/timezone"
)

func main() {
	configPath := flag.String("config", "locus.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	if err := dbAdapter.ValidateSchema(); err != nil {
		slog.Error("Schema validation failed", "error", err)
		os.Exit(1)
	}

	// 3. Initialize Volatile Buffer + Event Publisher (Redis, or in-memory
	// fallback when no redis.addr is configured)
	var (
		buf buffer.Store
		pub publish.Publisher
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		if err := client.Ping(context.Background()).Err(); err != nil {
			slog.Error("Failed to ping redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		slog.Info("Connected to redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)

		buf = buffer.NewRedisStore(client)
		pub = publish.NewRedisPublisher(client)
	} else {
		slog.Warn("No redis.addr configured, using in-memory buffer and log-only publishing")
		buf = buffer.NewMemoryStore()
		pub = publish.NewLoggingPublisher()
	}

	// 4. Initialize Timezone Resolution
	resolver, err := timezone.NewResolver()
	if err != nil {
		slog.Error("Failed to initialize timezone resolver", "error", err)
		os.Exit(1)
	}

	// 5. Wire Handlers + Message Bus
	handlers := service.NewHandlers(postgres.NewStarter(dbAdapter), buf, resolver)
	b := service.NewBus(handlers, pub, cfg.Publish.Channel)

	// 6. Initialize Ingest (HTTP write path)
	ingestSvc := ingest.NewService(b, cfg.Server.MaxBodySizeMB)

	// 7. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), b, cfg.Server.Mode)
	ingestSvc.RegisterRoutes(srv.Engine)

	// 8. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
