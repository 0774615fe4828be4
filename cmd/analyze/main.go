package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gohrv/adapters/polarcsv"
	"gohrv/adapters/report"
	"gohrv/app"
	"gohrv/internal"
	"gohrv/internal/config"
)

func main() {
	_ = godotenv.Load()
	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration: %v", err)
		os.Exit(1)
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	source := polarcsv.NewReader(dataDir)

	out := os.Stdout
	if path := os.Getenv("OUTPUT"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			logger.Error("opening output: %v", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	sink := report.NewCSVSink(out)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sweep := os.Getenv("HRV_SWEEP"); sweep == "1" || sweep == "true" {
		points, err := app.RunSweep(ctx, source, cfg, app.DefaultGrid(), logger)
		if err != nil {
			logger.Error("sweep: %v", err)
			os.Exit(1)
		}
		logger.Info("sweep finished: %d parameter combinations", len(points))
		return
	}

	summary, err := app.NewBatchRunner(source, sink, cfg, logger).Run(ctx)
	if err != nil {
		logger.Error("batch: %v", err)
		os.Exit(1)
	}
	if err := sink.Flush(); err != nil {
		logger.Error("flushing output: %v", err)
		os.Exit(1)
	}

	logger.Info("run %s: %d subjects processed, %d skipped",
		summary.RunID, len(summary.Processed), len(summary.Skipped))
	if summary.Pooled != nil {
		logger.Info("pooled %s: r=%.4f p=%.4f n=%d",
			summary.Pooled.Method, summary.Pooled.Coefficient, summary.Pooled.PValue, summary.Pooled.N)
	}
}
