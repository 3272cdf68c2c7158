// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/peterh/liner"

	"github.com/jeranaias/realty-tui/internal/analysis"
	"github.com/jeranaias/realty-tui/internal/config"
	"github.com/jeranaias/realty-tui/internal/export"
	"github.com/jeranaias/realty-tui/internal/model"
)

const chatPrompt = "realty> "

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state of a line-mode chat.
type ChatSession struct {
	Conv   *model.Conversation
	Client *analysis.Client
	Config *config.Config
	Quiet  bool

	out     io.Writer
	errOut  io.Writer
	render  renderOptions
	pending string // prefilled into the next prompt
}

func newChatSession(cfg *config.Config, out, errOut io.Writer, quiet bool, o renderOptions) *ChatSession {
	return &ChatSession{
		Conv:   model.NewConversation(),
		Client: newClient(cfg),
		Config: cfg,
		Quiet:  quiet,
		out:    out,
		errOut: errOut,
		render: o,
	}
}

// =============================================================================
// REPL
// =============================================================================

// HandleChat runs the interactive line-mode chat until /quit, Ctrl+C or EOF.
func HandleChat(args Args) error {
	cfg := config.Global()
	session := newChatSession(cfg, os.Stdout, os.Stderr, args.Quiet, renderOptionsFor(cfg))

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if !args.Quiet {
		session.printWelcome()
	}

	ctx := context.Background()
	for {
		var input string
		var err error
		if session.pending != "" {
			input, err = line.PromptWithSuggestion(chatPrompt, session.pending, -1)
			session.pending = ""
		} else {
			input, err = line.Prompt(chatPrompt)
		}
		if err != nil {
			// Ctrl+C, Ctrl+D and closed stdin all end the session.
			fmt.Fprintln(session.out)
			return nil
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if !session.handleLine(ctx, input) {
			return nil
		}
	}
}

func (s *ChatSession) printWelcome() {
	fmt.Fprintln(s.out, TitleStyle.Render("Real Estate Analysis Chatbot"))
	fmt.Fprintln(s.out, DimStyle.Render("Ask questions about real estate trends in Pune localities"))
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Sample queries:")
	for i, q := range analysis.SampleQueries {
		fmt.Fprintf(s.out, "  [%d] %s\n", i+1, q)
	}
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, DimStyle.Render("Type /help for commands, /quit or Ctrl+C to exit."))
	fmt.Fprintln(s.out)
}

// handleLine processes one line of input. It returns false when the session
// should end.
func (s *ChatSession) handleLine(ctx context.Context, input string) bool {
	if strings.TrimSpace(input) == "" {
		return true
	}
	text, isCommand := model.ParseInput(input)
	if isCommand {
		return s.runCommand(ctx, text)
	}
	if word := strings.TrimSpace(input); strings.EqualFold(word, "exit") || strings.EqualFold(word, "quit") {
		return false
	}
	s.ask(ctx, text)
	return true
}

// ask submits input through the conversation and prints the outcome.
func (s *ChatSession) ask(ctx context.Context, input string) {
	s.Conv.SetDraft(input)
	query, ok := s.Conv.Submit()
	if !ok {
		return
	}

	if !s.Quiet {
		fmt.Fprintln(s.errOut, DimStyle.Render("Analyzing..."))
	}
	start := time.Now()
	content, err := s.Client.Analyze(ctx, query)
	msg := s.Conv.Resolve(content, err)
	if err != nil {
		slog.Warn("analyze failed", "query", query, "err", err)
	} else {
		slog.Debug("analyze done", "query", query, "duration", time.Since(start))
	}

	s.printMessage(msg)
}

func (s *ChatSession) printMessage(msg model.Message) {
	stamp := DimStyle.Render(msg.Timestamp.Format("15:04"))
	if msg.Kind == model.KindError {
		fmt.Fprintf(s.out, "%s %s\n%s\n\n", ErrorStyle.Render(msg.Kind.DisplayName()), stamp, msg.Text)
		return
	}
	fmt.Fprintf(s.out, "%s %s\n", PromptStyle.Render(msg.Kind.DisplayName()), stamp)
	writeResponse(s.out, msg.Bot, s.render)
	fmt.Fprintln(s.out)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

var chatCommands = [][2]string{
	{"/help", "Show commands"},
	{"/clear", "Start a new conversation"},
	{"/localities", "List localities the service knows"},
	{"/sample N", "Put sample query N in the prompt"},
	{"/export [path]", "Save the last chart as a PNG"},
	{"/save [md|json]", "Save the conversation transcript"},
	{"/raw", "Show the last response body"},
	{"/copy", "Copy the last summary to the clipboard"},
	{"/quit", "Exit"},
	{"//text", "Send text starting with / as a query"},
}

func (s *ChatSession) runCommand(ctx context.Context, input string) bool {
	fields := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(fields) == 0 {
		s.fail(fmt.Errorf("type a command after /, for example /help"))
		return true
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "help", "h", "?":
		for _, c := range chatCommands {
			fmt.Fprintf(s.out, "  %-16s %s\n", c[0], c[1])
		}
	case "clear":
		s.Conv.Clear()
		fmt.Fprintln(s.out, SuccessStyle.Render("Conversation cleared"))
	case "localities":
		locs, err := s.Client.Localities(ctx)
		if err != nil {
			s.fail(fmt.Errorf("localities unavailable: %w", err))
			break
		}
		fmt.Fprintln(s.out, SectionStyle.Render("Known localities"))
		fmt.Fprintln(s.out, WrapText(strings.Join(locs, ", "), s.render.Width))
	case "sample":
		s.cmdSample(args)
	case "export":
		msg, ok := s.Conv.LastChart()
		if !ok {
			s.fail(fmt.Errorf("no chart to export yet"))
			break
		}
		if err := savePNG(s.out, s.Config, msg, strings.Join(args, " "), false); err != nil {
			s.fail(err)
		}
	case "save":
		s.cmdSave(args)
	case "raw":
		msg, ok := s.Conv.LastBot()
		if !ok {
			s.fail(fmt.Errorf("no response yet"))
			break
		}
		out, err := export.FormatResponse(rawBody(msg.Bot), export.FormatJSON, s.render.Color)
		if err != nil {
			s.fail(err)
			break
		}
		fmt.Fprintln(s.out, strings.TrimRight(out, "\n"))
	case "copy":
		msg, ok := s.Conv.LastBot()
		if !ok || strings.TrimSpace(msg.Bot.Summary) == "" {
			s.fail(fmt.Errorf("no summary to copy"))
			break
		}
		if err := clipboard.WriteAll(msg.Bot.Summary); err != nil {
			s.fail(fmt.Errorf("copy failed: %w", err))
			break
		}
		fmt.Fprintln(s.out, SuccessStyle.Render("Summary copied"))
	case "quit", "exit", "q":
		return false
	default:
		s.fail(fmt.Errorf("unknown command /%s (try /help)", name))
	}
	return true
}

func (s *ChatSession) cmdSample(args []string) {
	n := len(analysis.SampleQueries)
	if len(args) != 1 {
		s.fail(fmt.Errorf("usage: /sample N (1-%d)", n))
		return
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 1 || i > n {
		s.fail(fmt.Errorf("sample must be between 1 and %d", n))
		return
	}
	s.pending = analysis.SampleQueries[i-1]
}

func (s *ChatSession) cmdSave(args []string) {
	if s.Conv.IsEmpty() {
		s.fail(fmt.Errorf("nothing to save yet"))
		return
	}
	format := ""
	if len(args) > 0 {
		format = args[0]
	}
	path, err := export.SaveTranscript(s.Conv, format, &export.Options{
		OutputDir:         s.Config.Export.Dir,
		IncludeTimestamps: true,
	})
	if err != nil {
		s.fail(err)
		return
	}
	slog.Info("transcript saved", "path", path)
	fmt.Fprintln(s.out, SuccessStyle.Render("Transcript saved to "+path))
}

func (s *ChatSession) fail(err error) {
	writeError(s.errOut, err)
}

// rawBody returns the body the service sent, re-encoding the decoded content
// when the raw bytes were not kept.
func rawBody(b *model.BotContent) []byte {
	if b == nil {
		return nil
	}
	if len(b.Raw) > 0 {
		return b.Raw
	}
	out, err := json.Marshal(b)
	if err != nil {
		return nil
	}
	return out
}
