// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/realty-tui/internal/chart"
	"github.com/jeranaias/realty-tui/internal/model"
	"github.com/jeranaias/realty-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for conversation exporters.
type Exporter interface {
	// Export converts a conversation to the target format and returns the content.
	Export(conv *model.Conversation) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// ErrEmptyConversation is returned when there is nothing to export.
var ErrEmptyConversation = errors.New("conversation has no messages")

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool

	// ChartWidth and ChartHeight size exported PNG charts in pixels.
	ChartWidth  int
	ChartHeight int
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeTimestamps: true,
		ChartWidth:        1024,
		ChartHeight:       512,
	}
}

func (o *Options) withDefaults() *Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	out := *o
	if out.OutputDir == "" {
		out.OutputDir = d.OutputDir
	}
	if out.ChartWidth <= 0 {
		out.ChartWidth = d.ChartWidth
	}
	if out.ChartHeight <= 0 {
		out.ChartHeight = d.ChartHeight
	}
	return &out
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a conversation to a file using the specified exporter.
// Returns the output file path or an error.
func ExportToFile(conv *model.Conversation, exporter Exporter, opts *Options) (string, error) {
	opts = opts.withDefaults()

	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("conversation_%s_%s%s",
		sanitizeFilename(conv.Title()),
		time.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// ExportMarkdown exports to Markdown format.
func ExportMarkdown(conv *model.Conversation, opts *Options) (string, error) {
	return ExportToFile(conv, NewMarkdownExporter(opts), opts)
}

// ExportJSON exports to JSON format.
func ExportJSON(conv *model.Conversation, opts *Options) (string, error) {
	return ExportToFile(conv, NewJSONExporter(opts), opts)
}

// SaveTranscript writes conv as "md" (the default) or "json".
func SaveTranscript(conv *model.Conversation, format string, opts *Options) (string, error) {
	switch strings.ToLower(format) {
	case "", "md", "markdown":
		return ExportMarkdown(conv, opts)
	case "json":
		return ExportJSON(conv, opts)
	default:
		return "", fmt.Errorf("unsupported transcript format %q (want md or json)", format)
	}
}

// =============================================================================
// CHART EXPORT
// =============================================================================

// ChartPNG writes the chart of msg as a PNG file. When path is empty a name
// is derived from the chart title inside opts.OutputDir; a path ending in a
// separator or naming a directory gets the same generated name.
// Returns the written path.
func ChartPNG(msg model.Message, path string, opts *Options) (string, error) {
	opts = opts.withDefaults()

	cfg := msg.Bot.ChartConfig()
	if cfg == nil {
		return "", chart.ErrNoChart
	}

	path = resolveChartPath(path, cfg.Title, opts.OutputDir)
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".png" {
		path += ".png"
	}

	var buf bytes.Buffer
	if err := chart.RenderPNG(cfg, &buf, opts.ChartWidth, opts.ChartHeight); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

func resolveChartPath(path, title, dir string) string {
	generated := fmt.Sprintf("%s_%s.png",
		sanitizeFilename(strings.ToLower(title)),
		time.Now().Format("20060102_150405"))

	switch {
	case path == "":
		return filepath.Join(dir, generated)
	case strings.HasSuffix(path, string(os.PathSeparator)) || strings.HasSuffix(path, "/"):
		return filepath.Join(path, generated)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, generated)
	}
	return path
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "conversation"
	}
	return string(result)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
