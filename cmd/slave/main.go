package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/kbecker/mrs/internal/shared/config"
	"github.com/kbecker/mrs/internal/shared/logging"
	"github.com/kbecker/mrs/internal/slave/app"
	"github.com/kbecker/mrs/pkg/mrs"

	_ "github.com/kbecker/mrs/examples/grep"
	_ "github.com/kbecker/mrs/examples/wordcount"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	jobID := flag.String("job-id", "", "job id this slave's scratch directory is namespaced under")
	flag.Parse()

	cfg, err := config.LoadSlave(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.NewSlogLogger(logging.ParseLevel(cfg.Logging.Level))

	id := *jobID
	if id == "" {
		id = uuid.New().String()
	}

	ctx, cancel := context.WithCancel(context.Background())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("received shutdown signal")
		cancel()
	}()

	if err := app.Run(ctx, id, *cfg, mrs.Registered(), logger); err != nil && ctx.Err() == nil {
		logger.Fatal("slave exited with error", "error", err)
	}
}
