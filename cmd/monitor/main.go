package main

import (
	"context"
	"log"
	"os"

	"drowsiness/internal/app"
	"drowsiness/internal/config"
	"drowsiness/internal/logger"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Drowsiness monitor stopped: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	application, err := app.NewApp(cfg, logger)
	if err != nil {
		logger.Error("Startup failed: %v", err)
		return err
	}

	runErr := application.Run(context.Background())
	if runErr != nil {
		logger.Error("Monitoring failed: %v", runErr)
	}

	if err := application.Close(); err != nil {
		logger.Warning("Cleanup: %v", err)
	}

	return runErr
}
