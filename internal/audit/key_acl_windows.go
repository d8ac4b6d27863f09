//go:build windows
// +build windows

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// verifyWindowsACL checks that the HMAC key file's DACL grants access
// only to the owner, SYSTEM, and Administrators. Mode bits are not
// meaningful on Windows, so the security descriptor is inspected
// directly.
func verifyWindowsACL(path string) error {
	sd, err := windows.GetNamedSecurityInfo(
		path,
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION|windows.OWNER_SECURITY_INFORMATION,
	)
	if err != nil {
		return fmt.Errorf("failed to read security descriptor for %s: %w", path, err)
	}

	dacl, _, err := sd.DACL()
	if err != nil {
		return fmt.Errorf("failed to read DACL for %s: %w", path, err)
	}
	if dacl == nil {
		// Nil DACL grants everyone full control.
		return fmt.Errorf("HMAC key file %s has no DACL (world-accessible)", path)
	}

	owner, _, err := sd.Owner()
	if err != nil {
		return fmt.Errorf("failed to read owner for %s: %w", path, err)
	}

	system, _ := windows.CreateWellKnownSid(windows.WinLocalSystemSid)
	admins, _ := windows.CreateWellKnownSid(windows.WinBuiltinAdministratorsSid)

	for i := uint32(0); i < uint32(dacl.AceCount); i++ {
		var ace *windows.ACCESS_ALLOWED_ACE
		if err := windows.GetAce(dacl, i, &ace); err != nil {
			return fmt.Errorf("failed to read ACE %d for %s: %w", i, path, err)
		}
		sid := (*windows.SID)(unsafe.Pointer(uintptr(unsafe.Pointer(ace)) + unsafe.Offsetof(ace.SidStart)))

		if owner != nil && sid.Equals(owner) {
			continue
		}
		if system != nil && sid.Equals(system) {
			continue
		}
		if admins != nil && sid.Equals(admins) {
			continue
		}
		return fmt.Errorf("HMAC key file %s grants access to unexpected principal %s", path, sid.String())
	}

	return nil
}
