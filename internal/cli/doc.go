// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI commands of realty: argument parsing,
// the one-shot ask command, the line-oriented chat REPL, and the status,
// localities and config commands.
//
// Commands that print data honor --json by emitting a JSONResponse envelope
// on stdout; human-readable notes then go to stderr.
package cli
