// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/realty-tui/internal/analysis"
	"github.com/jeranaias/realty-tui/internal/export"
	"github.com/jeranaias/realty-tui/internal/model"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// Command describes one slash command.
type Command struct {
	Name        string
	Args        string
	Description string
}

// Usage returns the command with its argument hint.
func (c Command) Usage() string {
	if c.Args == "" {
		return "/" + c.Name
	}
	return "/" + c.Name + " " + c.Args
}

// commands lists the slash commands in help order.
var commands = []Command{
	{Name: "help", Description: "Show keys and commands"},
	{Name: "clear", Description: "Start a new conversation"},
	{Name: "localities", Description: "List localities the service knows"},
	{Name: "sample", Args: "N", Description: "Put sample query N in the input"},
	{Name: "export", Args: "[path]", Description: "Save the last chart as a PNG"},
	{Name: "save", Args: "[md|json]", Description: "Save the conversation transcript"},
	{Name: "raw", Description: "Show the last response body"},
	{Name: "copy", Description: "Copy the last summary to the clipboard"},
	{Name: "quit", Description: "Exit"},
}

// Commands returns the available slash commands.
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}

// ParseCommand splits "/name arg..." into its lowercased name and arguments.
func ParseCommand(input string) (string, []string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", nil, false
	}
	fields := strings.Fields(input[1:])
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// runCommand executes a slash command typed into the input.
func (m *Model) runCommand(input string) tea.Cmd {
	name, args, ok := ParseCommand(input)
	if !ok {
		return m.setNotice("Type a command after /, for example /help", true)
	}
	switch name {
	case "help":
		return cmdHelp(m, args)
	case "clear":
		return cmdClear(m, args)
	case "localities":
		return cmdLocalities(m, args)
	case "sample":
		return cmdSample(m, args)
	case "export":
		return cmdExport(m, args)
	case "save":
		return cmdSave(m, args)
	case "raw":
		return cmdRaw(m, args)
	case "copy":
		return cmdCopy(m, args)
	case "quit", "exit":
		return cmdQuit(m, args)
	}
	return m.setNotice(fmt.Sprintf("Unknown command /%s (try /help)", name), true)
}

func cmdHelp(m *Model, _ []string) tea.Cmd {
	m.toggleHelp()
	return nil
}

func cmdClear(m *Model, _ []string) tea.Cmd {
	m.clearConversation()
	return nil
}

func cmdLocalities(m *Model, _ []string) tea.Cmd {
	return tea.Batch(m.setNotice("Fetching localities...", false), m.fetchLocalities())
}

func cmdSample(m *Model, args []string) tea.Cmd {
	n := len(analysis.SampleQueries)
	if len(args) != 1 {
		return m.setNotice(fmt.Sprintf("Usage: /sample N (1-%d)", n), true)
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > n {
		return m.setNotice(fmt.Sprintf("Sample must be between 1 and %d", n), true)
	}
	m.setSample(i - 1)
	m.sampleIdx = i % n
	return nil
}

func cmdExport(m *Model, args []string) tea.Cmd {
	msg, ok := m.conv.LastChart()
	if !ok {
		return m.setNotice("No chart to export yet", true)
	}
	path := strings.Join(args, " ")
	opts := &export.Options{
		OutputDir:   m.cfg.Export.Dir,
		ChartWidth:  m.cfg.Export.Width,
		ChartHeight: m.cfg.Export.Height,
	}
	return func() tea.Msg {
		written, err := export.ChartPNG(msg, path, opts)
		return ExportDoneMsg{Path: written, Err: err}
	}
}

// cmdSave writes the transcript from the event loop, since the conversation
// is owned by it.
func cmdSave(m *Model, args []string) tea.Cmd {
	if m.conv.IsEmpty() {
		return m.setNotice("Nothing to save yet", true)
	}
	format := ""
	if len(args) > 0 {
		format = args[0]
	}
	path, err := export.SaveTranscript(m.conv, format, &export.Options{
		OutputDir:         m.cfg.Export.Dir,
		IncludeTimestamps: true,
	})
	if err != nil {
		return m.setNotice("Save failed: "+err.Error(), true)
	}
	slog.Info("transcript saved", "path", path)
	return m.setNotice("Transcript saved to "+path, false)
}

func cmdRaw(m *Model, _ []string) tea.Cmd {
	msg, ok := m.conv.LastBot()
	if !ok {
		return m.setNotice("No response yet", true)
	}
	out, err := export.FormatResponse(rawBody(msg), export.FormatJSON, true)
	if err != nil {
		return m.setNotice(err.Error(), true)
	}
	m.showPanel("Last response", strings.TrimRight(out, "\n"))
	return nil
}

func cmdCopy(m *Model, _ []string) tea.Cmd {
	msg, ok := m.conv.LastBot()
	if !ok || strings.TrimSpace(msg.Bot.Summary) == "" {
		return m.setNotice("No summary to copy", true)
	}
	summary := msg.Bot.Summary
	return func() tea.Msg {
		return CopyDoneMsg{Err: clipboard.WriteAll(summary)}
	}
}

func cmdQuit(_ *Model, _ []string) tea.Cmd {
	return tea.Quit
}

// rawBody returns the body the service sent, re-encoding the decoded
// content when the raw bytes were not kept.
func rawBody(msg model.Message) []byte {
	if msg.Bot == nil {
		return nil
	}
	if len(msg.Bot.Raw) > 0 {
		return msg.Bot.Raw
	}
	b, err := json.Marshal(msg.Bot)
	if err != nil {
		return nil
	}
	return b
}
