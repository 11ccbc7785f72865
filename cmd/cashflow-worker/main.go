package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/cli"
	applog "cashflow/internal/log"
	"cashflow/internal/persist"
	"cashflow/internal/sink"
	"cashflow/internal/sink/sheets"
	"cashflow/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting cashflow-worker")

	kv := cli.OpenKV(logger, cfg)
	defer kv.Close()
	adapter := persist.NewAdapter(kv, logger.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var snapshotSink sink.Sink
	switch cfg.Sink {
	case "sheets":
		s, err := sheets.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets sink", applog.FieldError, err)
			os.Exit(1)
		}
		snapshotSink = s
		logger.Info("Google Sheets sink initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	default:
		snapshotSink = sink.NewFileSink(cfg.SnapshotPath)
		logger.Info("File sink initialized", "path", cfg.SnapshotPath)
	}

	// Without a broker the worker degrades to timer-only snapshots.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - periodic snapshots only")
	}

	w := worker.NewSnapshotWorker(adapter, snapshotSink, amqpClient, cfg.SnapshotInterval,
		logger.WithComponent(applog.ComponentWorker))

	// Write one snapshot up front so the sink reflects current state even
	// when no changes arrive.
	startCtx, startCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := w.Flush(startCtx); err != nil {
		logger.Error("Startup snapshot failed", applog.FieldError, err)
	}
	startCancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	runDone := false
	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		runDone = true
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Worker failed", applog.FieldError, err)
		}
	}

	cancel()

	if !runDone {
		select {
		case <-errCh:
		case <-time.After(5 * time.Second):
			logger.Warn("Shutdown timeout reached")
		}
	}
	logger.Info("Worker shutdown complete")
}
