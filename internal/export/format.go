// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/realty-tui/internal/chart"
)

// =============================================================================
// RESPONSE FORMATTING
// =============================================================================

// Format names accepted by FormatResponse.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatResponse re-encodes a raw service response as indented JSON or as
// YAML, keeping the key order of the original. When color is set the output
// is syntax highlighted for a 256-color terminal.
func FormatResponse(raw []byte, format string, color bool) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	var out, lang string
	switch strings.ToLower(format) {
	case FormatJSON, "":
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return "", fmt.Errorf("invalid JSON response: %w", err)
		}
		out, lang = buf.String(), "json"

	case FormatYAML, "yml":
		y, err := jsonToYAML(raw)
		if err != nil {
			return "", err
		}
		out, lang = y, "yaml"

	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", format)
	}

	if color {
		return Highlight(out, lang), nil
	}
	return out, nil
}

// jsonToYAML converts through a yaml.Node so object key order survives.
func jsonToYAML(raw []byte) (string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	plainStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return buf.String(), nil
}

// plainStyle drops the flow and quoting styles JSON input carries so the
// output reads as block YAML. Strings that would change type unquoted keep
// their quotes.
func plainStyle(n *yaml.Node) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		n.Style = 0
	case yaml.ScalarNode:
		if n.Tag == "!!str" && needsQuotes(n.Value) {
			n.Style = yaml.DoubleQuotedStyle
		} else {
			n.Style = 0
		}
	}
	for _, c := range n.Content {
		plainStyle(c)
	}
}

func needsQuotes(s string) bool {
	var v interface{}
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return true
	}
	str, ok := v.(string)
	return !ok || str != s
}

// Highlight applies syntax highlighting to code using chroma.
// Falls back to the input unchanged when highlighting fails.
func Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

func seriesLabels(series []chart.Series) []string {
	labels := make([]string, len(series))
	for i, s := range series {
		labels[i] = s.Label
	}
	return labels
}
