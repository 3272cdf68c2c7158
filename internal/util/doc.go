// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the realty packages.
//
//   - AtomicWriteFile: crash-safe writes for exports
//   - FormatNumber, FormatInt: locale-grouped numbers for tables and axes
//   - Truncate, PadRight: display-width aware text fitting
package util
