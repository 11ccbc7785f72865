package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/cli"
	"cashflow/internal/core"
	apphttp "cashflow/internal/http"
	"cashflow/internal/ledger"
	applog "cashflow/internal/log"
	"cashflow/internal/persist"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	kv := cli.OpenKV(logger, cfg)
	defer kv.Close()

	adapter := persist.NewAdapter(kv, logger.Logger)

	// The persisted range survives a reset; everything else reloads from
	// the snapshot, falling back to defaults key by key.
	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	snapshot := adapter.Load(startCtx)
	store := ledger.New(snapshot,
		ledger.WithLogger(logger.Logger),
		ledger.WithRangeDefaults(func() (core.Date, core.Date, bool) {
			return adapter.PersistedRange(context.Background())
		}),
	)
	startCancel()

	store.OnChange(func(s ledger.Snapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := adapter.Save(ctx, s); err != nil {
			logger.Error("Snapshot save failed", applog.FieldError, err)
		}
	})

	// Change publishing is optional; without a broker the app is a
	// standalone planner.
	var publisher apphttp.ChangePublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP change publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, store, adapter, publisher, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server shutdown error", applog.FieldError, err)
			}
		})
		cli.WaitForShutdown(sigCtx, done)
		cancel()
	}()

	logger.Info("Starting cashflow server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.Backend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
