package main

import (
	"fmt"
	"os"
	"time"

	"github.com/romariotrain/animation-platform/internal/app"
	"github.com/romariotrain/animation-platform/internal/config"
	"github.com/romariotrain/animation-platform/internal/logging"
)

const serviceName = "animations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(cfg.AppEnv, cfg.LogLevel, serviceName)
	app.ShutdownGrace = cfg.ShutdownTimeout + cfg.WriteTimeout + 5*time.Second
	os.Exit(app.Run(serviceName, logger, newRunner(cfg, logger)))
}
