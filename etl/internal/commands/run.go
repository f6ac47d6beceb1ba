package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sentryline-systems/sentryline-etl/etl/internal/blobstore"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/load"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/transform"
)

var runInterval time.Duration

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: extract, transform, load",
	Long: `Run executes one extract-transform-load cycle. With --interval (or
run.interval in config) it keeps cycling until interrupted, serving
/metrics and /healthz while it runs.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "cycle interval; 0 runs once and exits")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	interval := cfg.Run.Interval
	if cmd.Flags().Changed("interval") {
		interval = runInterval
	}

	store, err := newStore(ctx)
	if err != nil {
		return err
	}

	repo, err := newRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	transformer, closeDLQ, err := newTransformer(ctx, store, repo)
	if err != nil {
		return err
	}
	defer closeDLQ()

	loader := newLoader(store, repo)

	if interval <= 0 {
		return cycle(ctx, store, transformer, loader)
	}

	// Looping mode: expose metrics and health while cycling.
	srv := metricsServer(cfg.Run.MetricsPort)
	go func() {
		logger.Info("metrics server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("pipeline loop started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := cycle(ctx, store, transformer, loader); err != nil {
			logger.Error("pipeline cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.Info("pipeline loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func cycle(ctx context.Context, store *blobstore.Store, transformer *transform.Transformer, loader *load.Loader) error {
	extracted, err := newExtractor(store).Run(ctx)
	if err != nil {
		return err
	}

	if _, err := transformer.Run(ctx, extracted.BatchID); err != nil {
		return err
	}

	if _, err := loader.Run(ctx, extracted.BatchID); err != nil {
		return err
	}

	return nil
}

func metricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
