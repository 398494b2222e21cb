package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"tip-calculator/internal/config"
	"tip-calculator/internal/tipcalc"
	"tip-calculator/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// The terminal is owned by bubbletea, so logs go to a file or nowhere.
	logger, err := newLogger(os.Getenv("TIPCALC_TUI_LOG"))
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("ignoring .env", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	opts, err := cfg.CalculatorOptions()
	if err != nil {
		return fmt.Errorf("building calculator options: %w", err)
	}

	model := tui.NewModel(tipcalc.New(opts), tipcalc.NewDebouncer(cfg.Debounce), logger)
	logger.Info("tui started", zap.Strings("presets", cfg.Presets), zap.Duration("debounce", cfg.Debounce))

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}

func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
