// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestParse_Defaults(t *testing.T) {
	args := Parse(nil)
	if args.Command != CmdShell {
		t.Errorf("Command = %v, want CmdShell", args.Command)
	}
	if args.Plain || args.Quiet || args.JSON {
		t.Errorf("flags should default to false: %+v", args)
	}
}

func TestParse_Flags(t *testing.T) {
	args := Parse([]string{"--plain", "-q"})
	if args.Command != CmdShell || !args.Plain || !args.Quiet {
		t.Errorf("args = %+v", args)
	}
}

func TestParse_Commands(t *testing.T) {
	cases := []struct {
		argv []string
		want Command
	}{
		{[]string{"shell"}, CmdShell},
		{[]string{"audit"}, CmdAudit},
		{[]string{"config"}, CmdConfig},
		{[]string{"version"}, CmdVersion},
		{[]string{"-v"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"-h"}, CmdHelp},
		{[]string{"bogus"}, CmdHelp},
		{[]string{"--bogus"}, CmdHelp},
	}
	for _, tc := range cases {
		if got := Parse(tc.argv).Command; got != tc.want {
			t.Errorf("Parse(%v).Command = %v, want %v", tc.argv, got, tc.want)
		}
	}
}

func TestParse_AuditSubcommand(t *testing.T) {
	args := Parse([]string{"audit", "verify"})
	if args.Command != CmdAudit || args.Subcommand != "verify" {
		t.Errorf("args = %+v", args)
	}

	args = Parse([]string{"audit", "show", "--json"})
	if args.Command != CmdAudit || args.Subcommand != "show" || !args.JSON {
		t.Errorf("args = %+v", args)
	}
}

func TestParse_ConfigKeyValue(t *testing.T) {
	args := Parse([]string{"config", "ui.theme", "dark"})
	if args.Command != CmdConfig || args.ConfigKey != "ui.theme" || args.ConfigVal != "dark" {
		t.Errorf("args = %+v", args)
	}
}
