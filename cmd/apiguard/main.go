// cmd/apiguard/main.go
//
// apiguard – HTTP entry point.
//
// Start-up
// --------
//
//  1. Load env vars (system-wide file → .env fallback).
//
//  2. Load and validate configuration (koanf + validator).
//
//  3. Start the rotating logger at the configured level (tees to console
//     when running in a TTY).
//
//  4. Build the API router in front of the configured upstream.
//
//  5. Run the API listener and the Prometheus /metrics listener under one
//     errgroup.  SIGINT or SIGTERM shuts both down gracefully.
//
//  6. SIGHUP re-reads configuration and applies the log level, upstream,
//     default region, body limits, and HTTPS redirect to the running
//     router.  Listen addresses only change on restart.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AdeptTravel/apiguard/internal/api"
	"github.com/AdeptTravel/apiguard/internal/config"
	"github.com/AdeptTravel/apiguard/internal/logger"
	"github.com/AdeptTravel/apiguard/internal/server"
)

const (
	serverEnvPath   = "/usr/local/etc/apiguard/apiguard.env"
	shutdownTimeout = 10 * time.Second
)

// loadEnv prefers the system-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, cfg.Log.Level, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	opts, err := optionsFrom(cfg)
	if err != nil {
		logOut.Fatalw("parse upstream", "url", cfg.API.Upstream, "err", err)
	}

	//
	// ── 1.  API router ──────────────────────────────────────────────────
	//
	h := api.New(opts, logOut)

	servers := []*http.Server{server.New(cfg.HTTP.ListenAddr, h.Routes())}

	//
	// ── 2.  Metrics endpoint (own listener, skipped when unset) ────────
	//
	if cfg.HTTP.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		servers = append(servers, server.New(cfg.HTTP.MetricsAddr, mux))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go watchReload(ctx, logOut, h)

	//
	// ── 3.  Serve until signalled ──────────────────────────────────────
	//
	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logOut.Infow("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		})
	}

	if err := g.Wait(); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
	logOut.Infow("shutdown complete")
}

// optionsFrom maps the config tree onto router options.
func optionsFrom(cfg *config.Config) (api.Options, error) {
	upstream, err := url.Parse(cfg.API.Upstream)
	if err != nil {
		return api.Options{}, err
	}
	return api.Options{
		Upstream:        upstream,
		DefaultRegion:   cfg.API.DefaultRegion,
		MaxBodyBytes:    cfg.API.MaxBodyBytes,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		ForceHTTPS:      cfg.HTTP.ForceHTTPS,
	}, nil
}

// watchReload re-reads configuration on SIGHUP and pushes the result into
// the running logger and router.  A rejected file is logged and the
// previous values stay in effect.
func watchReload(ctx context.Context, log *zap.SugaredLogger, h *api.Handler) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := config.Reload(); err != nil {
				log.Errorw("config reload rejected", "err", err)
				continue
			}
			cfg := config.Get()
			if err := applyReload(cfg, h); err != nil {
				log.Errorw("config reload not applied", "err", err)
				continue
			}
			log.Infow("config reloaded",
				"level", cfg.Log.Level,
				"upstream", cfg.API.Upstream,
				"note", "listen addresses change on restart",
			)
		}
	}
}

// applyReload updates the log level and router options from cfg.
func applyReload(cfg *config.Config, h *api.Handler) error {
	opts, err := optionsFrom(cfg)
	if err != nil {
		return err
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return err
	}
	h.Update(opts)
	return nil
}
