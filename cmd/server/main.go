// Package main is the entry point for the Bridge Eligibility External
// Adapter, which aggregates bridging and liquidity-provision activity from
// multiple protocol data sources into a single eligibility assessment.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/bridge-eligibility-ea/internal/aggregate"
	"github.com/yourorg/bridge-eligibility-ea/internal/cache"
	"github.com/yourorg/bridge-eligibility-ea/internal/config"
	"github.com/yourorg/bridge-eligibility-ea/internal/fetch"
	"github.com/yourorg/bridge-eligibility-ea/internal/otel"
	"github.com/yourorg/bridge-eligibility-ea/internal/server"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	setupLogging()

	cfg := config.Load()

	shutdownTracer := otel.InitTracer(cfg.OtelEndpoint)
	defer shutdownTracer()

	// Each adapter owns its slice of the shared store; keys are namespaced
	// per service so entries never collide.
	store := cache.NewMemoryStore()
	orbiter := fetch.NewOrbiterClient(cfg, store)
	hop := fetch.NewHopClient(cfg, store)

	analyzer := aggregate.NewAnalyzer(orbiter, hop)
	srv := server.New(cfg, analyzer)

	logrus.WithFields(logrus.Fields{
		"port":              cfg.Port,
		"orbiter_url":       cfg.OrbiterURL,
		"hop_url":           cfg.HopURL,
		"request_timeout":   cfg.RequestTimeout,
		"cache_ttl":         cfg.CacheTTL,
		"rate_limit_budget": cfg.RateLimitBudget,
	}).Info("Server initialized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logrus.Fatalf("Server error: %v", err)
	}

	logrus.Info("Server stopped")
}

// setupLogging configures the logging for the application
func setupLogging() {
	switch os.Getenv("LOG_FORMAT") {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
