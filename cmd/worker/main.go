package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arcadehub/rules-chatbot/internal/bootstrap"
	"github.com/arcadehub/rules-chatbot/internal/config"
	"github.com/arcadehub/rules-chatbot/internal/observability/logging"
	"github.com/arcadehub/rules-chatbot/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("rules-chatbot-worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	m := metrics.NewIngestMetrics("rules-chatbot-worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: m.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeReindexRequested(ctx, func(handlerCtx context.Context, reason string) error {
		runCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Minute)
		defer cancel()

		m.StartRun()
		start := time.Now()
		report, runErr := app.Ingestor.Run(runCtx, false)
		newChunks, dropped := 0, 0
		if report != nil {
			newChunks, dropped = report.ChunksNew, report.ChunksDropped
		}
		m.FinishRun("rules-chatbot-worker", time.Since(start), newChunks, dropped, runErr)

		if runErr != nil {
			slog.Error("reindex_failed", "reason", reason, "error", runErr)
			return runErr
		}
		slog.Info("reindex_complete",
			"reason", reason,
			"documents", report.DocumentsLoaded,
			"chunks_total", report.ChunksTotal,
			"chunks_new", report.ChunksNew,
			"chunks_dropped", report.ChunksDropped,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
