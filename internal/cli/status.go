// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jeranaias/realty-tui/internal/analysis"
	"github.com/jeranaias/realty-tui/internal/config"
)

// HandleStatus checks the analysis service and prints the settings in use.
func HandleStatus(args Args) error {
	return runStatus(context.Background(), os.Stdout, config.Global(), args)
}

func runStatus(ctx context.Context, w io.Writer, cfg *config.Config, args Args) error {
	data := collectStatus(ctx, cfg)

	if args.JSON {
		if err := NewJSONResponse("status", data).Write(w); err != nil {
			return err
		}
	} else {
		writeStatus(w, data, args.Quiet)
	}

	if !data.Reachable {
		return NewCommandError("status", "health check",
			"analysis service unreachable at "+data.Backend, &analysis.ClientError{Type: analysis.ErrTypeConnection, Message: data.Error})
	}
	return nil
}

func collectStatus(ctx context.Context, cfg *config.Config) StatusData {
	client := newClient(cfg)
	data := StatusData{
		Backend: client.BaseURL(),
		Timeout: "none",
	}
	if t := cfg.Backend.Timeout.Std(); t > 0 {
		data.Timeout = t.String()
	}
	if p, err := config.ConfigPathTOML(); err == nil {
		data.ConfigPath = p
	}
	if p, err := config.LogPath(cfg); err == nil {
		data.LogPath = p
	}

	start := time.Now()
	health, err := client.Health(ctx)
	data.LatencyMS = time.Since(start).Milliseconds()
	switch {
	case err != nil && analysis.IsConnectionError(err):
		data.Error = err.Error()
	case err != nil:
		// The service answered, just not with a health body.
		data.Reachable = true
		data.Error = err.Error()
	default:
		data.Reachable = true
		data.Status = health.Status
		data.Message = health.Message
	}
	return data
}

func writeStatus(w io.Writer, data StatusData, quiet bool) {
	if quiet {
		state := "unreachable"
		if data.Reachable {
			state = "reachable"
		}
		fmt.Fprintf(w, "%s %s\n", data.Backend, state)
		return
	}

	fmt.Fprintln(w, TitleStyle.Render("Analysis Service"))
	fmt.Fprintln(w, FormatKeyValue("Backend", data.Backend))

	switch {
	case !data.Reachable:
		fmt.Fprintln(w, FormatKeyValue("Status", "")+StatusIndicator(false)+" unreachable")
	case data.Status == "ok":
		fmt.Fprintln(w, FormatKeyValue("Status", "")+StatusIndicator(true)+" ok")
	case data.Status != "":
		fmt.Fprintln(w, FormatKeyValue("Status", "")+WarningStyle.Render("[!] "+data.Status))
	default:
		fmt.Fprintln(w, FormatKeyValue("Status", "")+WarningStyle.Render("[!] unknown"))
	}
	if data.Message != "" {
		fmt.Fprintln(w, FormatKeyValue("Message", data.Message))
	}
	if data.Error != "" {
		fmt.Fprintln(w, FormatKeyValue("Error", data.Error))
	}
	fmt.Fprintln(w, FormatKeyValue("Latency", fmt.Sprintf("%dms", data.LatencyMS)))
	fmt.Fprintln(w, FormatKeyValue("Timeout", data.Timeout))
	fmt.Fprintln(w, FormatKeyValue("Config", data.ConfigPath))
	fmt.Fprintln(w, FormatKeyValue("Log", data.LogPath))
}
