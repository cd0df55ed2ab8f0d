package main

import (
	"context"
	"os"

	"github.com/hearthhq/hearth/adapter/cli"
	"github.com/hearthhq/hearth/internal/app"
	"github.com/hearthhq/hearth/pkg/config"
	"github.com/hearthhq/hearth/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	cli.SetLogger(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Commands degrade gracefully when the container cannot come up, so
	// version and help keep working without a database.
	container, err := app.NewContainer(context.Background(), cfg, logger)
	if err != nil {
		logger.Warn("running without backing services", "error", err)
	} else {
		defer container.Close()
		cli.SetContainer(container)
	}

	cli.Execute()
}
