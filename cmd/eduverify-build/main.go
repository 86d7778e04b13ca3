package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/config"
	"github.com/haukened/edu-verify/internal/edu/services/builder"
)

const (
	version = "0.1.0-dev"
	appName = "eduverify-build"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := log.Configure(cfg.Env, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":  version,
		"dataset":  cfg.Dataset.Dir,
		"stoplist": cfg.Dataset.Stoplist,
		"abused":   cfg.Dataset.Abused,
		"outputs":  cfg.Output.Paths,
	}, "Starting "+appName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := buildService(cfg, log.GetLogger()).Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "Build failed")
	}
}

// buildService wires the builder from configuration.
func buildService(cfg *config.AppConfig, logger log.Logger) *builder.Service {
	return builder.New(builder.Options{
		DatasetDir: cfg.Dataset.Dir,
		Stoplist:   cfg.Dataset.Stoplist,
		Abused:     cfg.Dataset.Abused,
		Workers:    cfg.Dataset.Workers,
		Outputs:    cfg.Output.Paths,
		Logger:     logger,
	})
}
