package main

import (
	"context"

	"huntd/internal/app"
	"huntd/pkg/config"
	"huntd/pkg/logger"
	"huntd/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	flags := config.ParseConfigFlags()

	eff, err := config.LoadEffective(flags)
	if err != nil {
		logger.InitWithLevel("")
		shutdown.Abort("failed to load config", err, flags.DB)
	}

	logger.InitWithLevel(eff.Config.Logging.Level)
	logger.InitAccessLog()
	defer logger.Sync()

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("startup failed", err, eff.DBPath)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		_ = a.Close()
		shutdown.Abort("server exited", err, eff.DBPath)
	}
	if err := a.Close(); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	logger.Info("server_stopped")
}
