// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	addr := strings.TrimSpace(os.Getenv("ADDR"))
	rps := strings.TrimSpace(os.Getenv("RATE_RPS"))
	webhook := strings.TrimSpace(os.Getenv("SLACK_WEBHOOK"))

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (nobody will be able to start runs via the API).")
	}
	if pub == "" {
		warn("PUBLIC_API_KEYS is empty: read routes will only accept operator keys.")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if addr == "" {
		warn("ADDR is empty; the daemon default will be used.")
	} else {
		ok("ADDR=" + addr)
	}

	if rps != "" {
		if f, err := strconv.ParseFloat(rps, 64); err != nil || f <= 0 {
			fail("RATE_RPS must be a positive number, got " + rps)
		} else if f > 50 {
			warn("RATE_RPS above 50 will trip upstream quotas quickly.")
		}
		ok("RATE_RPS=" + rps)
	}

	if webhook == "" {
		warn("SLACK_WEBHOOK empty — working keys will not be announced.")
	} else if !strings.HasPrefix(webhook, "https://") {
		fail("SLACK_WEBHOOK must be an https URL.")
	} else {
		ok("SLACK_WEBHOOK present")
	}

	ok("preflight passed")
}
