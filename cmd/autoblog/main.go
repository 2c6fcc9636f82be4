// Package main is the entry point for AutoBlog. By default it serves the
// JSON API and runs the generation scheduler; --once and --bulk run the
// pipeline directly and exit.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/jessevdk/go-flags"

	"autoblog/internal/config"
	"autoblog/internal/generator"
	"autoblog/internal/middleware"
	"autoblog/internal/router"
	"autoblog/internal/scheduler"
)

// options are the command-line run modes.
type options struct {
	Once  bool   `long:"once" description:"Generate one post and exit"`
	Topic string `long:"topic" description:"Topic for --once; empty lets the text service suggest one"`
	Bulk  int    `long:"bulk" value-name:"N" description:"Generate N posts in sequence and exit"`
	Debug bool   `long:"debug" description:"Enable debug logging"`
}

// parseOptions parses args. It returns nil options when help was shown.
func parseOptions(args []string) (*options, error) {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			return nil, nil
		}
		return nil, err
	}
	if opts.Once && opts.Bulk > 0 {
		return nil, errors.New("--once and --bulk are mutually exclusive")
	}
	if opts.Bulk < 0 {
		return nil, errors.New("--bulk must be positive")
	}
	opts.Topic = strings.TrimSpace(opts.Topic)
	if opts.Topic != "" && !opts.Once {
		return nil, errors.New("--topic requires --once")
	}
	if utf8.RuneCountInString(opts.Topic) > generator.MaxTopicLen {
		return nil, fmt.Errorf("--topic is too long (max %d characters)", generator.MaxTopicLen)
	}
	return &opts, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts == nil {
		return
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	var code int
	switch {
	case opts.Once:
		code = printResults(a.generator.GeneratePost(ctx, opts.Topic))
	case opts.Bulk > 0:
		code = printResults(a.generator.BulkGenerate(ctx, opts.Bulk, nil)...)
	default:
		code = serve(ctx, a)
	}

	a.close()
	os.Exit(code)
}

// printResults writes the results to stdout as JSON. The exit code is 1
// when no run succeeded.
func printResults(results ...generator.Result) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	code := 1
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			slog.Error("failed to write result", "error", err)
		}
		if res.Success {
			code = 0
		}
	}
	return code
}

// serve runs the API and the scheduler until ctx is cancelled.
func serve(ctx context.Context, a *app) int {
	sched := scheduler.New(a.generator, func() config.Frequency {
		return a.settings.Get().PostFrequency
	})
	a.settings.OnChange(func(old, updated config.Generation) {
		if old.PostFrequency != updated.PostFrequency {
			slog.Info("post frequency changed", "from", old.PostFrequency, "to", updated.PostFrequency)
			sched.Reschedule()
		}
	})

	limiter := middleware.NewRateLimiter(10, time.Minute)
	defer limiter.Stop()

	r := router.New(a.api(sched), middleware.NewTokenAuth(a.cfg.APITokenHash), limiter)
	if a.cfg.APITokenHash == "" {
		slog.Warn("API_TOKEN_HASH not set, the API is unauthenticated")
	}

	// Generation requests wait on the text service for minutes, and a bulk
	// request runs up to twenty of them.
	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sched.Start(ctx)
	st := sched.State()
	slog.Info("scheduler started", "frequency", st.Frequency, "next_run_at", st.NextRunAt)

	code := 0
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		slog.Error("server failed", "error", err)
		code = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		code = 1
	}
	sched.Stop()

	slog.Info("server stopped gracefully")
	return code
}
