//go:build !windows
// +build !windows

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

// verifyWindowsACL is a stub for Unix systems. Unix permission checks
// use standard mode bits in checkKeyFilePermissions; the runtime.GOOS
// guard there keeps this from ever being called.
func verifyWindowsACL(path string) error {
	panic("verifyWindowsACL called on non-Windows platform")
}
