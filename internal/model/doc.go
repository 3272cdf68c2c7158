// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the conversation state shared by the chat surfaces.
//
// # Key Types
//
//   - Conversation: ordered messages, the input draft and the loading flag
//   - Message: a user query, a bot answer or an error
//   - BotContent: an analysis response (summary, chart payload, table rows)
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.SetDraft("Give me analysis of Wakad")
//	if query, ok := conv.Submit(); ok {
//	    resp, err := client.Analyze(ctx, query)
//	    conv.Resolve(resp, err)
//	}
package model
