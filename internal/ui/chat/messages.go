// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/realty-tui/internal/analysis"
	"github.com/jeranaias/realty-tui/internal/config"
	"github.com/jeranaias/realty-tui/internal/model"
)

// =============================================================================
// ANALYSIS MESSAGES
// =============================================================================

// AnalyzeResultMsg settles the in-flight query.
type AnalyzeResultMsg struct {
	Query    string
	Content  *model.BotContent
	Err      error
	Duration time.Duration
}

// HealthMsg carries the result of a service health check.
type HealthMsg struct {
	Health *analysis.HealthResponse
	Err    error
}

// LocalitiesMsg carries the result of /localities.
type LocalitiesMsg struct {
	Localities []string
	Err        error
}

// =============================================================================
// BACKGROUND MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a configuration re-read after the file changed.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// ExportDoneMsg reports the outcome of /export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// CopyDoneMsg reports the outcome of /copy.
type CopyDoneMsg struct {
	Err error
}

// clearNoticeMsg removes a status notice if it is still the current one.
type clearNoticeMsg struct {
	seq int
}
