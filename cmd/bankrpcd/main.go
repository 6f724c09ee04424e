// Command bankrpcd runs the single-node UDP banking RPC server. Grounded
// on the teacher's root main.go almost verbatim in shape: automaxprocs
// blank import, flag parsing, config load, start, signal wait, graceful
// shutdown.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/oddbank/rpcbankd/internal/config"
	"github.com/oddbank/rpcbankd/internal/observability"
	"github.com/oddbank/rpcbankd/internal/udpserver"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging (overrides BANKRPCD_LOG_LEVEL)")
	flag.Parse()

	bootLogger := observability.NewLogger(observability.LoggerConfig{
		Level:  observability.LogLevelInfo,
		Format: observability.LogFormatPretty,
	})

	cfg, err := config.Load(&bootLogger)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	cfg.Print()

	logger := observability.NewLogger(observability.LoggerConfig{
		Level:  observability.LogLevel(cfg.LogLevel),
		Format: observability.LogFormat(cfg.LogFormat),
	})
	cfg.LogConfig(logger)

	srv, err := udpserver.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
}
