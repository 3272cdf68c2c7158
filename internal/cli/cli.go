// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdLocalities
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// String returns the command name as typed.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdLocalities:
		return "localities"
	case CmdStatus:
		return "status"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool   // Output in JSON format
	Backend string // Overrides backend.url

	// Command-specific
	Query      string
	Output     string // ask: text, json or yaml
	PNG        string // ask: write the chart here
	NoChart    bool   // ask: skip the chart
	NoTable    bool   // ask: skip the table
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `realty - terminal client for the real estate analysis service

Ask natural-language questions about real estate trends in Pune localities
and get a summary, a chart and the underlying data.

Usage:
  realty                         Start TUI (default)
  realty ask "question"          Ask a single question
  realty chat                    Interactive line-mode chat
  realty localities              List localities the service knows
  realty status, s               Check the analysis service
  realty config [show|path|keys|get KEY|set KEY VALUE]
                                 Configuration
  realty version                 Show version
  realty help                    Show this help

Ask Options:
  -o, --output text|json|yaml    Output format (default: text)
  --png FILE                     Also save the chart as a PNG
  --no-chart, --no-table         Leave out the chart or table

Global Flags:
  --backend URL   Analysis service base URL (default: http://127.0.0.1:8000)
  --json          Output in JSON format
  -q, --quiet     Minimal output
  -v, --verbose   Log to stderr at debug level

Environment:
  REALTY_BACKEND_URL, BACKEND_URL   Service base URL
  REALTY_TIMEOUT                    Analyze timeout (e.g. 90s; default none)
  REALTY_LOG_LEVEL                  debug, info, warn, error
  REALTY_THEME                      auto, dark, light
  A .env file in the working directory is read at start-up.

Examples:
  realty ask "Give me analysis of Wakad"
  realty ask "Compare Ambegaon Budruk and Aundh demand trends" --png demand.png
  realty ask "Show price growth for Akurdi over the last 3 years" -o yaml
  realty --backend http://analysis.local:8000 status
  realty config set ui.chart_height 16

Version: %s
`

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	WriteUsage(os.Stdout)
}

// WriteUsage writes the usage text to w.
func WriteUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information to stdout.
func PrintVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print()
	}
	fmt.Printf("realty version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go:         %s\n", runtime.Version())
	return nil
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses a command line without the program name.
func ParseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask", "a":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat", "repl":
		return CmdChat, parsedArgs

	case "localities", "locs":
		return CmdLocalities, parsedArgs

	case "status", "s", "health":
		return CmdStatus, parsedArgs

	case "config", "cfg":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags strips global flags from anywhere on the command line.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-q" || arg == "--quiet":
			parsed.Quiet = true
		case arg == "-v" || arg == "--verbose":
			parsed.Verbose = true
		case arg == "--json":
			parsed.JSON = true
		case arg == "--backend":
			if i+1 < len(args) {
				parsed.Backend = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--backend="):
			parsed.Backend = strings.TrimPrefix(arg, "--backend=")
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, parsed
}

func parseAskArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining, "no-chart", "no-table")
	args.Output = strings.ToLower(p.FlagOrDefault("o", p.Flag("output")))
	args.PNG = p.Flag("png")
	args.NoChart = p.BoolFlag("no-chart")
	args.NoTable = p.BoolFlag("no-table")
	args.Query = strings.Join(p.PositionalFrom(0), " ")
}

func parseConfigArgs(args *Args, remaining []string) {
	p := NewArgParser(remaining)
	args.Subcommand = strings.ToLower(p.Subcommand())
	args.ConfigKey = p.Positional(1)
	args.ConfigVal = strings.Join(p.PositionalFrom(2), " ")
}
