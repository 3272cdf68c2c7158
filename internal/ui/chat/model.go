// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/realty-tui/internal/analysis"
	"github.com/jeranaias/realty-tui/internal/config"
	"github.com/jeranaias/realty-tui/internal/model"
	"github.com/jeranaias/realty-tui/internal/ui/styles"
)

// noticeTTL is how long a status bar notice stays up.
const noticeTTL = 4 * time.Second

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options wires the chat model to its collaborators.
type Options struct {
	Theme   *styles.Theme
	Client  *analysis.Client
	Config  *config.Config
	Watcher *config.Watcher // optional; nil disables hot reload
}

// panel is an informational block shown below the conversation. It is not
// part of the conversation history.
type panel struct {
	title string
	body  string
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Styling
	theme *styles.Theme
	keys  KeyMap
	md    *markdownCache

	// Dimensions
	width  int
	height int

	// Conversation
	conv *model.Conversation

	// Collaborators
	client  *analysis.Client
	cfg     *config.Config
	watcher *config.Watcher

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Service status
	health    *analysis.HealthResponse
	healthErr error

	// Status notice
	notice      string
	noticeError bool
	noticeSeq   int

	panel     panel
	showHelp  bool
	sampleIdx int
	sentAt    time.Time
}

// New creates a chat model.
func New(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Client == nil {
		opts.Client = analysis.NewClientWithConfig(clientConfig(opts.Config))
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about real estate trends (e.g., 'Analyze Wakad')"
	ti.CharLimit = 1024
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	return Model{
		theme:    opts.Theme,
		keys:     DefaultKeyMap(),
		md:       &markdownCache{},
		conv:     model.NewConversation(),
		client:   opts.Client,
		cfg:      opts.Config,
		watcher:  opts.Watcher,
		viewport: vp,
		input:    ti,
		spinner:  sp,
	}
}

// clientConfig translates the backend section of cfg.
func clientConfig(cfg *config.Config) *analysis.ClientConfig {
	return &analysis.ClientConfig{
		BaseURL:       cfg.Backend.URL,
		Timeout:       cfg.Backend.Timeout.Std(),
		HealthTimeout: cfg.Backend.HealthTimeout.Std(),
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink, the first health check and the config watch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.checkHealth(), m.watchConfig())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.conv.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case AnalyzeResultMsg:
		return m.handleAnalyzeResult(msg)

	case HealthMsg:
		m.health, m.healthErr = msg.Health, msg.Err
		return m, nil

	case LocalitiesMsg:
		return m.handleLocalities(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case ExportDoneMsg:
		if msg.Err != nil {
			return m, m.setNotice("Export failed: "+msg.Err.Error(), true)
		}
		slog.Info("chart exported", "path", msg.Path)
		return m, m.setNotice("Chart saved to "+msg.Path, false)

	case CopyDoneMsg:
		if msg.Err != nil {
			return m, m.setNotice("Copy failed: "+msg.Err.Error(), true)
		}
		return m, m.setNotice("Summary copied to clipboard", false)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Conversation returns the conversation owned by the view.
func (m Model) Conversation() *model.Conversation {
	return m.conv
}

// Loading reports whether a query is in flight.
func (m Model) Loading() bool {
	return m.conv.Loading()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)

	const promptLen = 2 // "> "
	inputWidth := m.width - 4 - promptLen
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.layout()
	m.updateViewport()
	return m, nil
}

// layout sizes the viewport to the space left by the fixed chrome.
func (m *Model) layout() {
	reserved := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderStatusBar())

	h := m.height - reserved
	if h < 1 {
		h = 1
	}
	w := m.width
	if w < 1 {
		w = 1
	}
	m.viewport.Width = w
	m.viewport.Height = h
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Help):
		m.toggleHelp()
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if m.showHelp || m.panel.body != "" {
			m.showHelp = false
			m.panel = panel{}
			m.updateViewport()
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.clearConversation()
		return m, nil

	case key.Matches(msg, m.keys.Sample):
		m.nextSample()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.conv.SetDraft(m.input.Value())
	return m, cmd
}

// submit sends the draft, or runs it when it is a slash command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text, isCommand := model.ParseInput(m.input.Value())
	if isCommand {
		m.input.Reset()
		m.conv.SetDraft("")
		cmd := m.runCommand(text)
		return m, cmd
	}

	m.conv.SetDraft(text)
	query, ok := m.conv.Submit()
	if !ok {
		if m.conv.Loading() {
			return m, m.setNotice("Still analyzing the previous query", false)
		}
		return m, nil
	}

	m.input.SetValue(m.conv.Draft())
	m.panel = panel{}
	m.showHelp = false
	m.sentAt = time.Now()
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.analyze(query), m.spinner.Tick)
}

func (m Model) handleAnalyzeResult(msg AnalyzeResultMsg) (tea.Model, tea.Cmd) {
	m.conv.Resolve(msg.Content, msg.Err)
	slog.Debug("query settled", "query_len", len(msg.Query), "failed", msg.Err != nil, "duration", msg.Duration)

	if msg.Err != nil && analysis.IsConnectionError(msg.Err) {
		m.health, m.healthErr = nil, msg.Err
	}

	m.updateViewport()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleLocalities(msg LocalitiesMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, m.setNotice("Localities unavailable: "+msg.Err.Error(), true)
	}
	body := "No localities reported."
	if len(msg.Localities) > 0 {
		body = strings.Join(msg.Localities, ", ")
	}
	m.showPanel("Known localities", body)
	return m, nil
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return m, m.watchConfig()
	}
	oldURL := m.client.BaseURL()
	m.cfg = msg.Config
	m.client.Reconfigure(*clientConfig(msg.Config))
	slog.Info("config reloaded", "backend", m.client.BaseURL())

	m.updateViewport()
	cmds := []tea.Cmd{m.watchConfig(), m.setNotice("Configuration reloaded", false)}
	if m.client.BaseURL() != oldURL {
		m.health, m.healthErr = nil, nil
		cmds = append(cmds, m.checkHealth())
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// COMMANDS
// =============================================================================

// analyze sends query to the service. The request has no deadline unless
// backend.timeout is set.
func (m Model) analyze(query string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		start := time.Now()
		content, err := client.Analyze(context.Background(), query)
		return AnalyzeResultMsg{
			Query:    query,
			Content:  content,
			Err:      err,
			Duration: time.Since(start),
		}
	}
}

func (m Model) checkHealth() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		h, err := client.Health(context.Background())
		return HealthMsg{Health: h, Err: err}
	}
}

func (m Model) fetchLocalities() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		locs, err := client.Localities(context.Background())
		return LocalitiesMsg{Localities: locs, Err: err}
	}
}

// watchConfig waits for the next reloaded configuration.
func (m Model) watchConfig() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w := m.watcher
	return func() tea.Msg {
		cfg, err := w.Next(context.Background())
		if err != nil {
			return nil
		}
		return ConfigReloadedMsg{Config: cfg}
	}
}

// setNotice shows text in the status bar for a few seconds.
func (m *Model) setNotice(text string, isError bool) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	m.noticeError = isError
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) showPanel(title, body string) {
	m.showHelp = false
	m.panel = panel{title: title, body: body}
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m *Model) toggleHelp() {
	m.showHelp = !m.showHelp
	m.panel = panel{}
	m.updateViewport()
	if m.showHelp {
		m.viewport.GotoBottom()
	}
}

func (m *Model) clearConversation() {
	m.conv.Clear()
	m.input.Reset()
	m.panel = panel{}
	m.showHelp = false
	m.sampleIdx = 0
	m.updateViewport()
	m.viewport.GotoTop()
}

// nextSample cycles sample queries into the input. A draft the user typed
// is left alone.
func (m *Model) nextSample() {
	draft := strings.TrimSpace(m.input.Value())
	if draft != "" && !isSample(draft) {
		return
	}
	m.setSample(m.sampleIdx)
	m.sampleIdx = (m.sampleIdx + 1) % len(analysis.SampleQueries)
}

func (m *Model) setSample(i int) {
	q := analysis.SampleQueries[i]
	m.input.SetValue(q)
	m.input.CursorEnd()
	m.conv.SetDraft(q)
}

func isSample(s string) bool {
	for _, q := range analysis.SampleQueries {
		if q == s {
			return true
		}
	}
	return false
}

// updateViewport re-renders the scrollback.
func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderMessages())
}
