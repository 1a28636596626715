// Command sws performs a single Space Weather Services request and prints the
// decoded records as indented JSON.
//
// Usage:
//
//	SWS_API_KEY=... go run ./cmd/sws -kind k-index -location Hobart -since 24h
//	SWS_API_KEY=... go run ./cmd/sws -kind a-index -start "2024-05-01 00:00:00" -end "2024-05-12 00:00:00"
//	SWS_API_KEY=... go run ./cmd/sws -kind mag-warning
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/spaceweather"
	"github.com/couchcryptid/spaceweather/internal/config"
	"github.com/couchcryptid/spaceweather/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sws", flag.ContinueOnError)
	fs.SetOutput(stderr)
	kindFlag := fs.String("kind", "", "record kind: "+kindList())
	start := fs.String("start", "", `window start, "YYYY-MM-DD HH:mm:ss" UTC (index kinds only)`)
	end := fs.String("end", "", `window end, "YYYY-MM-DD HH:mm:ss" UTC (index kinds only)`)
	since := fs.Duration("since", 0, "window start relative to now, e.g. 24h (ignored when -start is set)")
	location := fs.String("location", "", "K index observing site (defaults to KINDEX_LOCATION)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	kind := spaceweather.Kind(*kindFlag)
	if !validKind(kind) {
		fmt.Fprintf(stderr, "unknown -kind %q, want one of %s\n", *kindFlag, kindList())
		fs.Usage()
		return 2
	}

	r := spaceweather.TimeRange{Start: spaceweather.Formatted(*start), End: spaceweather.Formatted(*end)}
	if err := r.Validate(); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", kind, err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	client, err := spaceweather.New(ctx, cfg.APIKey,
		spaceweather.WithBaseURL(cfg.BaseURL),
		spaceweather.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(stderr, "connect: %v\n", err)
		return 1
	}

	if *start == "" && *since > 0 {
		r.Start = client.Since(*since).Start
	}
	loc := *location
	if loc == "" {
		loc = cfg.KIndexLocation
	}

	records, err := fetch(ctx, client, kind, r, loc)
	if err != nil {
		var reqErr *spaceweather.RequestError
		if errors.As(err, &reqErr) {
			fmt.Fprintf(stderr, "%s: HTTP %d\n", reqErr.Endpoint, reqErr.StatusCode)
		}
		fmt.Fprintf(stderr, "%s: %v\n", kind, err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	return 0
}

func fetch(ctx context.Context, c *spaceweather.Client, kind spaceweather.Kind, r spaceweather.TimeRange, location string) (any, error) {
	switch kind {
	case spaceweather.KindAuroraOutlook:
		return c.GetAuroraOutlook(ctx)
	case spaceweather.KindAuroraWatch:
		return c.GetAuroraWatch(ctx)
	case spaceweather.KindAuroraAlert:
		return c.GetAuroraAlert(ctx)
	case spaceweather.KindMagAlert:
		return c.GetMagAlert(ctx)
	case spaceweather.KindMagWarning:
		return c.GetMagWarning(ctx)
	case spaceweather.KindAIndex:
		return c.GetAIndex(ctx, r)
	case spaceweather.KindKIndex:
		return c.GetKIndex(ctx, r, location)
	case spaceweather.KindDstIndex:
		return c.GetDstIndex(ctx, r)
	default:
		return nil, fmt.Errorf("unsupported kind %q", kind)
	}
}

func validKind(kind spaceweather.Kind) bool {
	for _, k := range spaceweather.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func kindList() string {
	names := make([]string, len(spaceweather.Kinds))
	for i, k := range spaceweather.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, "|")
}
