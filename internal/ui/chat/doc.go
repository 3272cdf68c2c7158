// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view of the TUI.
//
// The model owns one conversation. Queries are sent to the analysis service
// from a tea.Cmd and their results come back as messages, so the event loop
// is the only writer of the conversation. While a query is in flight the
// input stays editable but submit is refused.
//
// Slash commands:
//
//	/help              show key bindings and commands
//	/clear             start a new conversation
//	/localities        list the localities the service knows
//	/sample N          put sample query N in the input
//	/export [path]     save the last chart as a PNG
//	/save [md|json]    save the conversation transcript
//	/raw               show the last response body
//	/copy              copy the last summary to the clipboard
//	/quit              exit
//
// A line starting with // is sent as a query with one slash removed.
package chat
