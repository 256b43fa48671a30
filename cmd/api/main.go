package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/thezakman/tapik/internal/config"
	"github.com/thezakman/tapik/internal/governor"
	"github.com/thezakman/tapik/internal/httpapi"
	apimw "github.com/thezakman/tapik/internal/httpapi/middleware"
	"github.com/thezakman/tapik/internal/logging"
	"github.com/thezakman/tapik/internal/notify"
	"github.com/thezakman/tapik/internal/probe"
	"github.com/thezakman/tapik/internal/repo/memory"
	"github.com/thezakman/tapik/internal/runner"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	gov := governor.New(cfg.RateRPS, cfg.RateBurst)
	var prober probe.Prober = probe.NewExecutor(cfg.ProbeTimeout, gov, logger)
	if cfg.RetryAttempts > 1 {
		prober = &probe.RetryProber{Inner: prober, Attempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}
	}

	var notifiers notify.Multi
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		notifiers = append(notifiers, s)
	}

	api := httpapi.NewServer(
		logger,
		runner.New(prober, logger, cfg.Concurrency),
		memory.New(),
		notifiers,
		cfg.RunTimeout,
	)

	keys := apimw.Keys{Readers: cfg.PublicAPIKeys, Operators: cfg.AdminAPIKeys}

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, api.Router(keys, cfg.PublicRPM, cfg.PublicBurst)); err != nil {
		log.Fatal(err)
	}
}
