// realty - a terminal client for the real estate analysis service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/realty-tui/internal/analysis"
	"github.com/jeranaias/realty-tui/internal/cli"
	"github.com/jeranaias/realty-tui/internal/config"
	"github.com/jeranaias/realty-tui/internal/logging"
	"github.com/jeranaias/realty-tui/internal/ui/chat"
	"github.com/jeranaias/realty-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	case cli.CmdVersion:
		cli.HandleErrorAndExit(cli.PrintVersion(args), args.JSON)
		return
	case cli.CmdUnknown:
		cli.HandleErrorAndExit(cli.NewValidationErrorWithExample(
			"command", args.Raw[0], "unknown command", "realty help"), args.JSON)
		return
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	config.SetOverrides(config.Overrides{BackendURL: args.Backend})
	if args.Backend != "" {
		if err := config.ValidateBackendURL(args.Backend); err != nil {
			cli.HandleErrorAndExit(cli.NewValidationErrorWithExample(
				"backend", args.Backend, err.Error(), "--backend http://127.0.0.1:8000"), args.JSON)
		}
	}

	cfg := config.Global()
	closeLog := setupLogging(cfg, cmd, args)
	defer closeLog()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(cfg)
	case cli.CmdAsk:
		err = cli.HandleAsk(args)
	case cli.CmdChat:
		err = cli.HandleChat(args)
	case cli.CmdLocalities:
		err = cli.HandleLocalities(args)
	case cli.CmdStatus:
		err = cli.HandleStatus(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	}

	if err != nil {
		slog.Error("command failed", "command", cmd.String(), "err", err)
		_ = closeLog()
		cli.HandleErrorAndExit(err, args.JSON)
	}
}

// setupLogging sends logs to stderr for verbose line-mode commands and to
// the log file otherwise, so the TUI screen is never written over.
func setupLogging(cfg *config.Config, cmd cli.Command, args cli.Args) func() error {
	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if args.Verbose && cmd != cli.CmdTUI {
		opts.Level = "debug"
		opts.Writer = os.Stderr
	} else if path, err := config.LogPath(cfg); err == nil {
		opts.File = path
	}

	closer, err := logging.Setup(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	return closer
}

// runTUI starts the full-screen chat.
func runTUI(cfg *config.Config) error {
	theme := styles.NewTheme(cfg.UI.Theme)

	client := analysis.NewClientWithConfig(&analysis.ClientConfig{
		BaseURL:       cfg.Backend.URL,
		Timeout:       cfg.Backend.Timeout.Std(),
		HealthTimeout: cfg.Backend.HealthTimeout.Std(),
	})

	// Hot reload is optional; a missing config directory just disables it.
	watcher, err := config.NewWatcher()
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
		watcher = nil
	} else {
		defer watcher.Close()
	}

	m := chat.New(chat.Options{
		Theme:   theme,
		Client:  client,
		Config:  cfg,
		Watcher: watcher,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse wheel scrolling
	)

	slog.Info("tui started", "backend", client.BaseURL(), "version", Version)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running realty: %w", err)
	}
	return nil
}
