package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr   string // API bind address, e.g., "127.0.0.1:8080" (Windows) or ":8080" (Docker)
	LogDir string // logs directory

	// Outbound probing
	RateRPS       float64       // requests per second ceiling for outbound probes
	RateBurst     int           // token bucket burst
	Concurrency   int           // worker pool size
	ProbeTimeout  time.Duration // per-request timeout
	RunTimeout    time.Duration // overall run deadline (0 = none)
	RetryAttempts int           // transient-error retries per pair
	RetryBackoff  time.Duration // initial retry backoff

	// API surface
	PublicAPIKeys []string
	AdminAPIKeys  []string
	PublicRPM     int
	PublicBurst   int

	// Notifications
	SlackWebhook string
}

func FromEnv() Config {
	// Bind address (Windows-friendly default)
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	rateRPS := 5.0
	if v := os.Getenv("RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			rateRPS = f
		}
	}

	return Config{
		Addr:          addr,
		LogDir:        logDir,
		RateRPS:       rateRPS,
		RateBurst:     envInt("RATE_BURST", 5),
		Concurrency:   envInt("CONCURRENCY", 4),
		ProbeTimeout:  envMS("PROBE_TIMEOUT_MS", 10*time.Second),
		RunTimeout:    envMS("RUN_TIMEOUT_MS", 0),
		RetryAttempts: envInt("RETRY_ATTEMPTS", 2),
		RetryBackoff:  envMS("RETRY_BACKOFF_MS", 300*time.Millisecond),
		PublicAPIKeys: envList("PUBLIC_API_KEYS"),
		AdminAPIKeys:  envList("ADMIN_API_KEYS"),
		PublicRPM:     envInt("PUBLIC_RPM", 120),
		PublicBurst:   envInt("PUBLIC_BURST", 60),
		SlackWebhook:  strings.TrimSpace(os.Getenv("SLACK_WEBHOOK")),
	}
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envMS(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func envList(name string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
