// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across toonchat packages:
// crash-safe file replacement and display-width aware string handling for
// mixed Hangul and Latin text.
package util
