// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/realty-tui/internal/model"
	"github.com/jeranaias/realty-tui/internal/table"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	return &MarkdownExporter{options: opts.withDefaults()}
}

// Export converts a conversation to Markdown format.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if conv.IsEmpty() {
		return nil, ErrEmptyConversation
	}

	var sb strings.Builder
	msgs := conv.Messages()

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(conv.Title())))
	sb.WriteString(fmt.Sprintf("date: %s\n", conv.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("messages: %d\n", len(msgs)))
	sb.WriteString("generator: realty-tui\n")
	sb.WriteString("---\n\n")

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(conv.Title())))
	sb.WriteString(fmt.Sprintf("- **Started**: %s\n\n", formatTimestamp(conv.CreatedAt)))

	for i, msg := range msgs {
		label := msg.Kind.DisplayName()
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
		}

		switch msg.Kind {
		case model.KindBot:
			sb.WriteString(e.formatBot(msg.Bot))
		case model.KindError:
			sb.WriteString(fmt.Sprintf("> **Error:** %s\n", strings.TrimSpace(msg.Text)))
		default:
			sb.WriteString(strings.TrimSpace(msg.Text))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")

		if i < len(msgs)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from realty on %s*\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func (e *MarkdownExporter) formatBot(b *model.BotContent) string {
	if b == nil {
		return "_(empty response)_\n"
	}

	var sb strings.Builder
	if b.Summary != "" {
		sb.WriteString("**Summary:**\n\n")
		sb.WriteString(strings.TrimSpace(b.Summary))
		sb.WriteString("\n\n")
	}
	if b.Error != "" {
		sb.WriteString(fmt.Sprintf("> **Error:** %s\n\n", b.Error))
	}
	if cfg := b.ChartConfig(); cfg != nil && !cfg.IsEmpty() {
		sb.WriteString(fmt.Sprintf("**Chart:** %s (%s; %s)\n\n",
			cfg.Title, cfg.Style, strings.Join(seriesLabels(cfg.Series), ", ")))
	}
	if b.HasTable() {
		sb.WriteString("**Detailed Data:**\n\n")
		sb.WriteString(markdownTable(b.Table))
		sb.WriteString("\n")
	}
	if len(b.Localities) > 0 {
		sb.WriteString(fmt.Sprintf("**Localities:** %s\n\n", strings.Join(b.Localities, ", ")))
	}
	return sb.String()
}

func markdownTable(rows []table.Row) string {
	var sb strings.Builder
	headers := table.Headers(rows)

	sb.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	sb.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for _, line := range table.Cells(rows) {
		for i, cell := range line {
			line[i] = strings.ReplaceAll(cell, "|", "\\|")
		}
		sb.WriteString("| " + strings.Join(line, " | ") + " |\n")
	}
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
