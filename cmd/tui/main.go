package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kaanzapkinus/assetstracker/internal/app"
	"github.com/kaanzapkinus/assetstracker/internal/config"
	"github.com/kaanzapkinus/assetstracker/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, toml or json)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The alternate screen owns stdout, so only the log file is written
	logger, err := app.NewLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = services.Close() }()

	model := tui.New(services.Dashboard, tui.Options{
		Context:         ctx,
		RefreshInterval: cfg.RefreshInterval,
		Logger:          logger.Named("tui"),
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		logger.Error("dashboard exited with error", zap.Error(err))
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}
