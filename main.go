package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"grnseeds/internal/config"
	"grnseeds/internal/container"

	"github.com/joho/godotenv"
)

// main runs the configured experiment once with environment settings. The
// grnseeds CLI in cmd/cli exposes the same runner with flags.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	c, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.InitRunner(ctx); err != nil {
		log.Fatalf("Failed to initialize experiment runner: %v", err)
	}

	runErr := c.Runner.RunAll(ctx, appConfig.Experiment.Algorithm)
	if err := c.Shutdown(context.Background()); err != nil {
		log.Printf("Warning: shutdown: %v", err)
	}
	if runErr != nil {
		log.Printf("Experiment failed: %v", runErr)
		stop()
		os.Exit(1)
	}
}
