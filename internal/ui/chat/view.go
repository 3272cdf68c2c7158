// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/realty-tui/internal/analysis"
	"github.com/jeranaias/realty-tui/internal/chart"
	"github.com/jeranaias/realty-tui/internal/model"
	"github.com/jeranaias/realty-tui/internal/table"
	"github.com/jeranaias/realty-tui/internal/ui/styles"
	"github.com/jeranaias/realty-tui/internal/util"
)

const (
	headerTitle    = "Real Estate Analysis Chatbot"
	headerSubtitle = "Ask questions about real estate trends in Pune localities"
	welcomeTitle   = "Welcome! Try asking about real estate in Pune"
	loadingText    = "Analyzing..."
)

// =============================================================================
// MAIN VIEW
// =============================================================================

func (m Model) renderChat() string {
	if m.width == 0 {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	inner := m.theme.HeaderTitle.Render(headerTitle)
	if m.theme.GetLayoutMode() != styles.LayoutNarrow {
		inner = lipgloss.JoinVertical(lipgloss.Center, inner,
			m.theme.HeaderSubtitle.Render(util.Truncate(headerSubtitle, m.width-6)))
	}
	w := m.width - 2
	if w < 1 {
		w = 1
	}
	return m.theme.Header.Width(w).Render(inner)
}

// =============================================================================
// SCROLLBACK
// =============================================================================

func (m *Model) renderMessages() string {
	var parts []string

	msgs := m.conv.Messages()
	if len(msgs) == 0 {
		parts = append(parts, m.renderEmptyState())
	}
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg))
	}

	if m.showHelp {
		parts = append(parts, m.renderPanel("Help", m.helpText()))
	} else if m.panel.body != "" {
		parts = append(parts, m.renderPanel(m.panel.title, m.panel.body))
	}

	return strings.Join(parts, "\n\n")
}

func (m *Model) renderMessage(msg model.Message) string {
	switch msg.Kind {
	case model.KindUser:
		return m.renderUserMessage(msg)
	case model.KindError:
		return m.renderErrorMessage(msg)
	default:
		return m.renderBotMessage(msg)
	}
}

func (m *Model) renderUserMessage(msg model.Message) string {
	maxWidth := m.contentWidth() * 4 / 5
	label := m.theme.UserLabel.Render(msg.Kind.DisplayName()) + " " +
		m.theme.Timestamp.Render(formatTimestamp(msg.Timestamp))

	text := msg.Text
	if lipgloss.Width(text)+4 > maxWidth {
		text = lipgloss.NewStyle().Width(maxWidth - 4).Render(text)
	}
	bubble := m.theme.UserBubble.Render(text)

	block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
	return lipgloss.PlaceHorizontal(m.contentWidth(), lipgloss.Right, block)
}

func (m *Model) renderErrorMessage(msg model.Message) string {
	width := m.contentWidth() - 2
	label := styles.RenderError(msg.Kind.DisplayName()) + " " +
		m.theme.Timestamp.Render(formatTimestamp(msg.Timestamp))
	return label + "\n" + m.theme.ErrorBubble.Width(width).Render(msg.Text)
}

// renderBotMessage draws the summary, chart and table sections. Sections
// with nothing to show are left out.
func (m *Model) renderBotMessage(msg model.Message) string {
	inner := m.contentWidth() - 4
	if inner < 20 {
		inner = 20
	}
	bot := msg.Bot

	var sections []string
	if bot != nil && strings.TrimSpace(bot.Summary) != "" {
		sections = append(sections,
			m.theme.Section.Render("Summary:")+"\n"+m.md.render(bot.Summary, inner, m.theme.IsDark))
	}
	if bot != nil && bot.Error != "" {
		sections = append(sections, styles.RenderWarning(bot.Error))
	}
	if m.cfg.UI.ShowChart {
		if out := chart.Render(bot.ChartConfig(), inner, m.cfg.UI.ChartHeight); out != "" {
			sections = append(sections, out)
		}
	}
	if m.cfg.UI.ShowTable && bot.HasTable() {
		sections = append(sections,
			m.theme.Section.Render("Detailed Data:")+"\n"+table.Render(bot.Table, inner))
	}
	if len(sections) == 0 {
		sections = append(sections, m.theme.Muted.Render("(empty response)"))
	}

	label := m.theme.BotLabel.Render(msg.Kind.DisplayName()) + " " +
		m.theme.Timestamp.Render(formatTimestamp(msg.Timestamp))
	body := m.theme.BotBubble.Width(m.contentWidth() - 2).Render(strings.Join(sections, "\n\n"))
	return label + "\n" + body
}

func (m *Model) renderEmptyState() string {
	var sb strings.Builder
	sb.WriteString(m.theme.WelcomeTitle.Render(welcomeTitle))
	sb.WriteString("\n")
	sb.WriteString(m.theme.Help.Render("Sample queries:"))
	sb.WriteString("\n")
	for i, q := range analysis.SampleQueries {
		sb.WriteString("  ")
		sb.WriteString(m.theme.SampleKey.Render(fmt.Sprintf("[%d]", i+1)))
		sb.WriteString(" ")
		sb.WriteString(m.theme.Sample.Render(q))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.theme.Muted.Render("Press Tab to copy a sample into the input, or type /sample N. F1 shows help."))

	return lipgloss.PlaceHorizontal(m.contentWidth(), lipgloss.Center,
		lipgloss.NewStyle().Align(lipgloss.Left).Render(sb.String()))
}

func (m *Model) renderPanel(title, body string) string {
	return m.theme.Section.Render(title) + "\n" +
		lipgloss.NewStyle().PaddingLeft(2).Render(body)
}

func (m *Model) helpText() string {
	var sb strings.Builder
	for _, col := range m.keys.FullHelp() {
		for _, b := range col {
			h := b.Help()
			fmt.Fprintf(&sb, "%s %s\n", m.theme.SampleKey.Render(util.PadRight(h.Key, 10)), h.Desc)
		}
	}
	sb.WriteString("\n")
	for _, c := range commands {
		fmt.Fprintf(&sb, "%s %s\n", m.theme.SampleKey.Render(util.PadRight(c.Usage(), 16)), c.Description)
	}
	fmt.Fprintf(&sb, "%s %s\n", m.theme.SampleKey.Render(util.PadRight("//text", 16)), "Send text starting with / as a query")
	return strings.TrimRight(sb.String(), "\n")
}

// =============================================================================
// INPUT AND STATUS BAR
// =============================================================================

func (m Model) renderInput() string {
	line := m.input.View()
	if m.conv.Loading() {
		status := m.spinner.View() + " " + loadingText
		if !m.sentAt.IsZero() {
			status += fmt.Sprintf(" %ds", int(time.Since(m.sentAt).Seconds()))
		}
		line = m.theme.Loading.Render(status) + "  " + line
	}
	w := m.width
	if w < 1 {
		w = 1
	}
	return m.theme.InputContainer.Width(w).Render(line)
}

func (m Model) renderStatusBar() string {
	left := m.renderHealth() + " " + m.theme.Muted.Render(m.client.BaseURL())

	right := fmt.Sprintf("%d messages | F1 help", m.conv.Len())
	if m.notice != "" {
		style := m.theme.StatusNotice
		if m.noticeError {
			style = m.theme.StatusOffline
		}
		right = style.Render(m.notice)
	}

	gap := m.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	w := m.width
	if w < 1 {
		w = 1
	}
	return m.theme.StatusBar.Width(w).MaxHeight(1).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHealth() string {
	switch {
	case m.health != nil && m.health.OK():
		return styles.RenderSuccess("online")
	case m.health != nil:
		return m.theme.StatusNotice.Render(styles.StatusIndicators.Warning + " " + m.health.Status)
	case m.healthErr != nil:
		return styles.RenderError("offline")
	default:
		return m.theme.Muted.Render(styles.StatusIndicators.Pending + " checking")
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) contentWidth() int {
	if m.width < 30 {
		return 30
	}
	return m.width - 2
}

// formatTimestamp shows the time of day for today, otherwise the date too.
func formatTimestamp(t time.Time) string {
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("Jan 2 15:04")
}

// markdownCache keeps one glamour renderer per wrap width and background.
type markdownCache struct {
	renderer *glamour.TermRenderer
	width    int
	dark     bool
}

// render formats a summary as markdown, falling back to wrapped plain text.
func (c *markdownCache) render(text string, width int, dark bool) string {
	if c.renderer == nil || c.width != width || c.dark != dark {
		style := "light"
		if dark {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return lipgloss.NewStyle().Width(width).Render(text)
		}
		c.renderer, c.width, c.dark = r, width, dark
	}

	out, err := c.renderer.Render(text)
	if err != nil {
		return lipgloss.NewStyle().Width(width).Render(text)
	}
	return strings.Trim(out, "\n")
}
