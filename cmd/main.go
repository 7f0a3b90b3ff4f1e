package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Ishita-2210/teamforge-recommender/internal/adapters/http/api"
	"github.com/Ishita-2210/teamforge-recommender/internal/adapters/http/swagger"
	app "github.com/Ishita-2210/teamforge-recommender/internal/app"
	"github.com/Ishita-2210/teamforge-recommender/internal/config"
	"github.com/Ishita-2210/teamforge-recommender/pkg/logger"
	"github.com/Ishita-2210/teamforge-recommender/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithDataDir(cfg.DataDir),
		app.WithArtifacts(app.ArtifactPaths{
			TeamVectors:    cfg.TeamVectorsPath,
			UserVectors:    cfg.UserVectorsPath,
			GraphVectors:   cfg.GraphVectorsPath,
			PrimaryModel:   cfg.PrimaryModelPath,
			PrimaryScaler:  cfg.PrimaryScalerPath,
			SecondaryModel: cfg.SecondaryModelPath,
			BanditDB:       cfg.BanditDBPath,
		}),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.FeedbackQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithBlendWeights(cfg.PrimaryBlendWeight, cfg.SecondaryBlendWeight),
		app.WithFeatureWeights(cfg.SkillWeight, cfg.SemanticWeight, cfg.GraphWeight),
		app.WithSimilarityMethod(cfg.SimilarityMethod),
		app.WithEpsilon(cfg.Epsilon),
		app.WithExplorePoolSize(cfg.ExplorePoolSize),
		app.WithExposureCap(cfg.ExposureCap),
		app.WithPenaltyRate(cfg.PenaltyRate),
		app.WithBanditDecay(cfg.BanditDecay),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, cfg.MaxTopK)
	apiServer.Register(ctx, mux)
	swagger.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startServiceMetricsUpdater refreshes gauge metrics from service stats.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := svc.GetStats()
			if queueLen, ok := stats["queueLength"].(int); ok {
				metrics.UpdateFeedbackQueueSize(queueLen)
			}
		}
	}
}
