// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package analysis

// AnalyzeRequest is the body of POST /api/analyze/.
type AnalyzeRequest struct {
	Query string `json:"query"`
}

// LocalitiesResponse is the body of GET /api/localities/.
type LocalitiesResponse struct {
	Localities []string `json:"localities"`
}

// HealthResponse is the body of GET /api/health/.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OK reports whether the service declared itself healthy.
func (h *HealthResponse) OK() bool {
	return h != nil && h.Status == "ok"
}

// errorBody is the body the service sends with a failure status.
type errorBody struct {
	Error string `json:"error"`
}

// SampleQueries are example questions offered on the welcome screen.
var SampleQueries = []string{
	"Give me analysis of Wakad",
	"Compare Ambegaon Budruk and Aundh demand trends",
	"Show price growth for Akurdi over the last 3 years",
}
