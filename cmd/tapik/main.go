package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/thezakman/tapik/internal/catalog"
	"github.com/thezakman/tapik/internal/config"
	"github.com/thezakman/tapik/internal/governor"
	"github.com/thezakman/tapik/internal/keylist"
	"github.com/thezakman/tapik/internal/logging"
	"github.com/thezakman/tapik/internal/probe"
	"github.com/thezakman/tapik/internal/report"
	"github.com/thezakman/tapik/internal/runner"
)

const banner = `
 _              _ _
| |            (_) |
| |_ __ _ _ __  _| | __
| __/ _` + "`" + ` | '_ \| | |/ /
| || (_| | |_) | |   <
 \__\__,_| .__/|_|_|\_\
         | |
  - TEST |_| API KEYS`

func main() {
	var (
		key       = flag.String("k", "", "single API key to test")
		listPath  = flag.String("l", "", "file with API keys, one per line")
		selection = flag.String("s", "", "endpoint selection, e.g. \"1-3,5\" (default: all)")
		provider  = flag.String("provider", "", "only probe endpoints of this provider")
		conc      = flag.Int("c", 0, "concurrent probes (default: CONCURRENCY env or 4)")
		asJSON    = flag.Bool("json", false, "emit the report as JSON instead of text")
		quiet     = flag.Bool("q", false, "suppress the banner")
	)
	flag.Parse()

	_ = godotenv.Load() // optional .env, same lookup the API daemon does
	cfg := config.FromEnv()

	if !*quiet && !*asJSON {
		fmt.Println(banner)
	}

	keys, err := gatherKeys(*key, *listPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tapik:", err)
		os.Exit(1)
	}
	if len(keys) == 0 {
		fmt.Fprintln(os.Stderr, "No API key or list provided. Use -k for a single key or -l for a file of keys.")
		os.Exit(2)
	}
	if !*asJSON && *listPath != "" {
		fmt.Printf("[Total of keys]: %d\n", len(keys))
	}

	eps, err := catalog.Resolve(*selection)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tapik:", err)
		os.Exit(1)
	}
	if *provider != "" {
		eps = filterProvider(eps, *provider)
	}

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tapik: logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	concurrency := cfg.Concurrency
	if *conc > 0 {
		concurrency = *conc
	}

	gov := governor.New(cfg.RateRPS, cfg.RateBurst)
	var prober probe.Prober = probe.NewExecutor(cfg.ProbeTimeout, gov, logger)
	if cfg.RetryAttempts > 1 {
		prober = &probe.RetryProber{Inner: prober, Attempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}
	}
	r := runner.New(prober, logger, concurrency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	m, err := r.Run(ctx, runner.Selection{Keys: keys, Endpoints: eps})
	if err != nil {
		var ce *runner.ConfigError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, "tapik:", ce.Error())
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "tapik:", err)
		os.Exit(1)
	}

	rep := report.New(m)
	if *asJSON {
		b, err := rep.JSON()
		if err != nil {
			fmt.Fprintln(os.Stderr, "tapik: export:", err)
			os.Exit(1)
		}
		os.Stdout.Write(b)
		fmt.Println()
	} else {
		fmt.Print(rep.Text())
	}

	if m.Incomplete {
		os.Exit(3)
	}
}

func gatherKeys(single, listPath string) ([]string, error) {
	if single != "" {
		return []string{single}, nil
	}
	if listPath != "" {
		return keylist.ReadFile(listPath)
	}
	return nil, nil
}

func filterProvider(eps []catalog.Endpoint, provider string) []catalog.Endpoint {
	out := eps[:0]
	for _, ep := range eps {
		if ep.Provider == provider {
			out = append(out, ep)
		}
	}
	return out
}
