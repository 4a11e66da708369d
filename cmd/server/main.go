package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/precifica/backend/config"
	httpDelivery "github.com/precifica/backend/internal/delivery/http"
	"github.com/precifica/backend/internal/infrastructure/cache"
	"github.com/precifica/backend/internal/infrastructure/postgres"
	"github.com/precifica/backend/internal/infrastructure/queue"
	"github.com/precifica/backend/internal/observability"
	"github.com/precifica/backend/internal/usecase"
	"github.com/precifica/backend/internal/worker"
)

func main() {
	// Local development reads secrets from .env; absent in production
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("starting precifica backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Infrastructure
	pool, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	repo := postgres.NewInvoiceRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure database schema")
	}

	ingestQueue := queue.NewRedisQueue(cfg.Redis.Addr, cfg.Redis.Queue)
	defer ingestQueue.Close()

	invoiceCache := cache.NewInvoiceCache()

	defaults, err := cfg.Pricing.Parameters()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid default pricing parameters")
	}
	log.Info().
		Str("entry_tax", defaults.EntryTaxPercent.String()).
		Str("markup_xapuri", defaults.MarkupXapuri.String()).
		Str("markup_epita", defaults.MarkupEpita.String()).
		Str("rounding", defaults.Rounding.String()).
		Msg("default pricing parameters")

	// Usecase layer
	invoiceService := usecase.NewInvoiceService(repo, invoiceCache, usecase.InvoiceServiceConfig{
		CacheTTL: cfg.Cache.TTL,
		Defaults: defaults,
	})

	// Metrics endpoint
	observability.Start(cfg.Metrics.Port)

	// Ingestion worker consuming the XML queue
	ingestor := worker.NewIngestor(ingestQueue, invoiceService, cfg.Worker.RatePerSecond, cfg.Worker.Burst, log)
	go func() {
		if err := ingestor.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("ingestion worker exited")
		}
	}()

	// HTTP delivery
	handler := httpDelivery.NewHandler(invoiceService, ingestQueue)
	router := httpDelivery.SetupRouter(cfg, handler, log)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server listening")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
