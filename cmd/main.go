// jobmate-match-service
//
// Vector similarity matching engine: turns a resume embedding plus filters
// into a ranked, filtered, paginated list of job matches.
//
//   - adaptive strategy: cheap count probe picks fallback vs. vector search
//   - TTL + size bounded result cache with exclusion re-filtering on hits
//   - already-applied and cooling-period jobs never surface in results
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"jobmate/match-service/internal/archive"
	"jobmate/match-service/internal/cache"
	"jobmate/match-service/internal/config"
	"jobmate/match-service/internal/db"
	"jobmate/match-service/internal/embedding"
	"jobmate/match-service/internal/exclusion"
	"jobmate/match-service/internal/logger"
	"jobmate/match-service/internal/match"
	"jobmate/match-service/internal/scheduler"
)

const version = "1.0.0"

func main() {
	log, err := logger.New(os.Getenv("LOG_JSON") == "true", os.Getenv("LOG_DEBUG") == "true")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config error", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Info("connecting to PostgreSQL")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("postgres", zap.Error(err))
	}
	defer pool.Close()

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// ── Matching engine ──────────────────────────────────────────────────────
	searcher := match.NewSearcher(pool, log, match.DefaultRetryConfig(cfg.SearchMaxRetries))
	validator := match.NewValidator(log)
	matcher := match.NewVectorMatcher(searcher, validator, log, cfg.FallbackThreshold, cfg.ProbeLimit)

	resultCache := cache.New(cfg.CacheTTL, cfg.CacheMaxEntries)

	svc := match.NewService(
		match.ServiceConfig{
			EmbeddingDim:    cfg.EmbeddingDim,
			Timeout:         cfg.MatchTimeout,
			DefaultLimit:    cfg.DefaultPageSize,
			MaxLimit:        50,
			DefaultRadiusKM: cfg.DefaultRadiusKM,
		},
		match.ServiceDeps{
			Matcher: matcher,
			Cache:   resultCache,
			Providers: []exclusion.Provider{
				exclusion.NewAppliedJobs(pool),
				exclusion.NewCooledJobs(rdb),
			},
			Sink:   archive.NewRedisSink(rdb, cfg.CacheTTL),
			Events: rdb,
			Logger: log,
		},
	)

	// ── Cache purge cron ─────────────────────────────────────────────────────
	purge := scheduler.New(svc, log, int(cfg.CachePurgeEvery.Minutes()))
	if err := purge.Start(); err != nil {
		log.Fatal("scheduler", zap.Error(err))
	}
	defer purge.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := match.NewHandler(svc, embedding.NewPostgresSource(pool), log)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.MatchTimeout + 5*time.Second,
	}

	go func() {
		log.Info("listening", zap.String("version", version), zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}
	log.Info("stopped")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "match-service",
		"version": version,
	})
}
