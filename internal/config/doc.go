// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for realty.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - BackendConfig: analysis service URL and timeouts
//   - UIConfig: theme, chart and table display
//   - Watcher: reloads the config when its file changes
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line overrides (--backend)
//   - Environment variables (REALTY_*, BACKEND_URL, and .env via LoadDotEnv)
//   - ~/.realty/config.toml
//   - ~/.realty/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := analysis.NewClientWithConfig(&analysis.ClientConfig{
//	    BaseURL: cfg.Backend.URL,
//	    Timeout: cfg.Backend.Timeout.Std(),
//	})
package config
