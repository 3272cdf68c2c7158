// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations, charts and raw responses out of the
// terminal.
//
// # Key Types
//
//   - Exporter: converts a conversation to bytes (Markdown, JSON)
//   - Options: output directory, timestamps and PNG chart size
//
// # Usage
//
// Export a transcript:
//
//	path, err := export.ExportMarkdown(conv, nil)
//
// Save the latest chart:
//
//	msg, _ := conv.LastChart()
//	path, err := export.ChartPNG(msg, "", opts)
//
// Pretty-print a response body:
//
//	out, err := export.FormatResponse(raw, export.FormatYAML, true)
package export
