package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rightswatch/config"
	"rightswatch/core/appbootstrap"
	"rightswatch/core/utils"
)

func main() {
	configPath := flag.String("config", os.Getenv("RIGHTSWATCH_CONFIG"), "path to YAML config file")
	usage := flag.Bool("env-help", false, "print the environment variable reference and exit")
	flag.Parse()

	if *usage {
		fmt.Println(config.Usage())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := utils.NewLoggerTo(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := appbootstrap.Run(ctx, cfg, logger); err != nil {
		logger.Errorf("fatal: %v", err)
		stop()
		os.Exit(1)
	}
}
