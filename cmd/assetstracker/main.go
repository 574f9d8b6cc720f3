package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"github.com/kaanzapkinus/assetstracker/internal/app"
	"github.com/kaanzapkinus/assetstracker/internal/cli"
	"github.com/kaanzapkinus/assetstracker/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, toml or json)")
	verbose := flag.Bool("v", false, "log to stderr")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	var console io.Writer = io.Discard
	if *verbose {
		console = os.Stderr
	}
	logger, err := app.NewLogger(cfg, console)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	services, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(int(subcommands.ExitFailure))
	}

	cli.Register(commander, cli.NewApp(services.Dashboard, logger))
	status := commander.Execute(ctx)

	_ = services.Close()
	_ = logger.Sync()
	stop()
	os.Exit(int(status))
}
