// README: Entry point; loads config, wires stores and services, serves the quote API until SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"freightquote/internal/config"
	httptransport "freightquote/internal/http"
	"freightquote/internal/infra"
	"freightquote/internal/maps"
	"freightquote/internal/modules/booking"
	"freightquote/internal/modules/district"
	"freightquote/internal/modules/pricing"
)

func main() {
	configDir := flag.String("config", ".", "directory containing an optional freight.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := infra.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("freight-api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer func() { _ = redisClient.Close() }()
	cache := redisClient
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, district cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		cache = nil
	}

	districtSvc := district.NewService(district.NewStore(dbPool), cache, cfg.Redis.DistrictTTL, log)

	opts := []pricing.Option{
		pricing.WithCostModel(pricing.PerKmCost{PerKm: decimal.NewFromFloat(cfg.Pricing.CostPerKm)}),
		pricing.WithLogger(log),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, pricing.WithMetrics(pricing.NewMetrics(prometheus.DefaultRegisterer)))
	}
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.Region, cfg.Maps.PartnerCorridors)
		if err != nil {
			return fmt.Errorf("maps client: %w", err)
		}
		opts = append(opts, pricing.WithRouteProvider(routes))
	} else {
		log.Info("maps api key not set, route-options requires explicit candidates")
	}

	pricingStore := pricing.NewStore(dbPool)
	pricingSvc := pricing.NewService(pricingStore, districtSvc, opts...)

	bookingSvc := booking.NewService(booking.NewStore(dbPool), pricingSvc, cfg.Pricing.Currency, log)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Pricing:        pricingSvc,
		Admin:          pricingStore,
		Booking:        bookingSvc,
		Log:            log,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Metrics:        cfg.Metrics.Enabled,
	})

	return httptransport.NewServer(cfg.HTTP.Addr, router, log).Run(ctx)
}
