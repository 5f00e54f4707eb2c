package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/storefront/internal/storefront/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file (default $"+app.EnvConfigFile+")")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return app.ExitOK
		}
		return app.ExitUsage
	}

	environ := os.Environ()
	cfg, err := app.LoadConfig(app.ConfigPath(*configPath, environ), environ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return app.ExitError
	}

	application, err := app.New(cfg, app.WithOutput(os.Stdout, os.Stderr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize application: %v\n", err)
		return app.ExitError
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx, fs.Args())
}
