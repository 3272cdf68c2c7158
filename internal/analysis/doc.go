// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package analysis provides the HTTP client for the real-estate analysis
// service.
//
// The service answers natural-language queries with a summary, chart data
// and table rows:
//
//	client := analysis.NewClient()
//	content, err := client.Analyze(ctx, "Give me analysis of Wakad")
//	if err != nil {
//	    fmt.Println(analysis.ErrorText(err))
//	}
//
// Requests carry no timeout unless ClientConfig.Timeout is set.
package analysis
