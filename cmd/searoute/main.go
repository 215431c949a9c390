package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"searoute/internal/api"
	"searoute/pkg/cache"
	"searoute/pkg/config"
	"searoute/pkg/db"
	"searoute/pkg/landmask"
	"searoute/pkg/logging"
	"searoute/pkg/probe"
	"searoute/pkg/request"
	"searoute/pkg/router"
	"searoute/pkg/tracker"
	"searoute/pkg/version"
	"searoute/pkg/weather"
)

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault("configs/searoute.yaml"); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated: configs/searoute.yaml")
		return
	}

	if err := run(context.Background(), "configs/searoute.yaml"); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("SeaRoute Started", "version", version.Version)

	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()

	tr := tracker.New()
	reqClient := request.New(
		cache.NewSQLiteCache(dbConn, time.Duration(appCfg.DB.CacheTTL)),
		tr,
		request.Options{
			Timeout:   time.Duration(appCfg.Request.Timeout),
			Retries:   appCfg.Request.Retries,
			BaseDelay: time.Duration(appCfg.Request.Backoff.BaseDelay),
			MaxDelay:  time.Duration(appCfg.Request.Backoff.MaxDelay),
		},
	)

	masks := landmask.NewProvider(landmask.Config{
		Path: appCfg.LandMask.Path,
		URL:  appCfg.LandMask.URL,
	}, reqClient)

	probes := []probe.Probe{
		{
			Name:     "Cache Database",
			Check:    func(ctx context.Context) error { return dbConn.PingContext(ctx) },
			Critical: true,
		},
		{
			// Also warms the mask so the first route request doesn't
			// pay for the parse.
			Name: "Land Mask",
			Check: func(ctx context.Context) error {
				if m := masks.EnsureReady(ctx); m.State() != landmask.StateLoaded {
					return fmt.Errorf("no dataset loaded, routing is permissive")
				}
				return nil
			},
		},
	}
	if err := probe.AnalyzeResults(probe.Run(ctx, probes)); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	wx := weather.NewClient(
		appCfg.Weather.BaseURL,
		appCfg.Weather.ForecastDays,
		time.Duration(appCfg.Weather.FetchTimeout),
		reqClient,
	)

	rt := router.New(masks, wx, tr, router.Options{
		KeyPrecision:     appCfg.Router.KeyPrecision,
		ReachThresholdNm: appCfg.Router.ReachThresholdNm,
		CruiseSpeedKn:    appCfg.Router.CruiseSpeedKn,
		FuelBurnMtPerH:   appCfg.Router.FuelBurnMtPerH,
		MaxExpansions:    appCfg.Router.MaxExpansions,
	})

	go pruneLoop(ctx, dbConn, time.Duration(appCfg.DB.CacheTTL))

	return runServer(ctx, appCfg, rt, tr)
}

func runServer(ctx context.Context, cfg *config.Config, rt *router.Router, tr *tracker.Tracker) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Addr,
		api.NewRouteHandler(rt),
		api.NewStatsHandler(tr),
		shutdownFunc,
	)
	srv.Handler = loggingMiddleware(srv.Handler)

	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// pruneLoop drops expired response-cache rows once an hour.
func pruneLoop(ctx context.Context, d *db.DB, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.PruneCache(ttl); err != nil {
				slog.Warn("Cache prune failed", "error", err)
			}
		}
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
