package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/filedepot/filedepot_server/internal"
	"github.com/filedepot/filedepot_server/internal/storage"
	"github.com/rs/zerolog/log"
)

const version = "1.0.0"

func main() {
	configPath := internal.DefaultConfigPath
	if path := os.Getenv("FILEDEPOT_CONFIG"); path != "" {
		configPath = path
	}

	config, err := internal.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
		return
	}
	internal.ConfigureLogger(config.Log)

	backend, err := storage.NewBackend(config.BackendConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing storage backend")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storageService, err := internal.NewStorageService(ctx, config, backend)
	if err != nil {
		log.Fatal().Err(err).Msg("Error checking storage destinations")
		return
	}

	requestHandler, err := internal.NewRequestHandler(config, internal.Modules(config, version, storageService))
	if err != nil {
		log.Fatal().Err(err).Msg("Error composing routes")
		return
	}

	server := internal.NewServer(config, requestHandler)
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", config.Server.Address).
			Str("backend", config.Storage.Backend).
			Str("version", version).
			Msg("Starting server")
		errCh <- server.ListenAndServe(config.Server.Address)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Error starting server")
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down server")
		}
	}
}
