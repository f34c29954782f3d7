package main

import (
	"context"
	"log"
	"os"
	"syscall"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/server"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, err := server.InitializeResources(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		os.Exit(1)
	}

	srv := server.New(logger, cfg, res)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = shutdown.Graceful(ctx,
			[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
			cfg.ShutdownTimeout,
			logger,
			srv,
		)
	}()

	logger.Info("interview service initialized and starting", "addr", cfg.Addr())

	if err := srv.Run(ctx); err != nil {
		logger.Error("interview service exited with error", "err", err)
		_ = srv.Shutdown(context.Background())
		os.Exit(1)
	}
	<-done
	logger.Info("interview service stopped")
}
