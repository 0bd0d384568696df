// Package main runs the chess rules API server and its database admin commands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chess-rules/cmd/chess-server/cli"
	"chess-rules/internal/archive"
	"chess-rules/internal/core"
	"chess-rules/internal/http"
	"chess-rules/internal/processor"
	"chess-rules/internal/service"
	"chess-rules/internal/storage"

	"github.com/rs/zerolog"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatal().Err(err).Msg("CLI error")
		}
		os.Exit(0)
	}

	var cfg core.ServerConfig
	flag.StringVar(&cfg.APIHost, "api-host", "localhost", "API server host")
	flag.IntVar(&cfg.APIPort, "api-port", 8080, "API server port")
	flag.BoolVar(&cfg.Dev, "dev", false, "Development mode (relaxed rate limits, debug logging)")
	flag.StringVar(&cfg.StoragePath, "storage-path", "", "Path to SQLite database file (disables persistence if empty)")
	flag.StringVar(&cfg.ArchivePath, "archive-path", "", "Directory for the completed-session archive (in-memory if empty)")
	flag.StringVar(&cfg.PIDPath, "pid", "", "Optional path to write PID file")
	flag.BoolVar(&cfg.PIDLock, "pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	flag.IntVar(&cfg.Workers, "workers", 2, "Computer move workers")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}

	level := zerolog.InfoLevel
	if cfg.Dev {
		level = zerolog.DebugLevel
	}
	log = log.Level(level)

	if err := serve(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func serve(cfg core.ServerConfig, log zerolog.Logger) error {
	if cfg.PIDPath != "" {
		pid, err := acquirePIDFile(cfg.PIDPath, cfg.PIDLock)
		if err != nil {
			return fmt.Errorf("manage PID file: %w", err)
		}
		defer pid.Release()
		log.Info().Str("path", cfg.PIDPath).Bool("lock", cfg.PIDLock).Msg("PID file created")
	}

	// 1. Storage (optional)
	var store *storage.Store
	if cfg.StoragePath != "" {
		var err error
		store, err = storage.NewStore(cfg.StoragePath, cfg.Dev, log)
		if err != nil {
			return err
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			return fmt.Errorf("initialize schema: %w", err)
		}
		log.Info().Str("path", cfg.StoragePath).Msg("persistent storage enabled")
	} else {
		log.Info().Msg("persistent storage disabled (use -storage-path to enable)")
	}

	// 2. Session archive
	arch, err := archive.Open(cfg.ArchivePath, log)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return err
	}

	// 3. Service owns storage and archive from here on
	svc := service.New(store, arch, log)

	// 4. Processor with its engine workers
	proc := processor.New(svc, cfg.Workers, log)

	// 5. HTTP
	app := http.NewFiberApp(proc, cfg.Dev)
	apiAddr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)

	listenErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", "http://"+apiAddr).
			Str("endpoints", "/api/v1/games").
			Bool("dev", cfg.Dev).
			Int("workers", cfg.Workers).
			Msg("chess API server starting")
		listenErr <- app.Listen(apiAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var errs []error
	select {
	case <-quit:
		log.Info().Msg("shutting down")
	case err := <-listenErr:
		errs = append(errs, fmt.Errorf("listen: %w", err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := proc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("processor close: %w", err))
	}
	if err := svc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("service close: %w", err))
	}

	log.Info().Msg("server exited")
	return errors.Join(errs...)
}
