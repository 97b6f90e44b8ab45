package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetVersionInfo(t *testing.T) {
	origVersion, origCommit, origDate := appVersion, appCommit, appDate
	defer func() { appVersion, appCommit, appDate = origVersion, origCommit, origDate }()

	SetVersionInfo("1.2.3", "abc1234", "2025-03-10")

	if appVersion != "1.2.3" || appCommit != "abc1234" || appDate != "2025-03-10" {
		t.Errorf("version info = %s %s %s", appVersion, appCommit, appDate)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"nonexistent-command"})
	defer rootCmd.SetArgs(nil)

	err := Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected unknown command error, got %v", err)
	}
}

func TestExecute_VersionSubcommand(t *testing.T) {
	origVersion := appVersion
	defer func() { appVersion = origVersion }()
	appVersion = "test-ver"

	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	out := captureStdout(t, func() {
		if err := Execute(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "tfl test-ver") {
		t.Errorf("output = %q", out)
	}
}

func TestExecute_OwnerFlag(t *testing.T) {
	svc := newTestService(t)
	useService(t, svc)
	resetFlags(t, addCmd)
	t.Cleanup(func() {
		ownerFlag = ""
		rootCmd.PersistentFlags().Lookup("owner").Changed = false
	})

	rootCmd.SetArgs([]string{"--owner", "bob", "add", "Buy milk", "-d", "Two litres"})
	defer rootCmd.SetArgs(nil)

	out := captureStdout(t, func() {
		if err := Execute(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if !strings.Contains(out, "Created task T-001") {
		t.Errorf("output = %q", out)
	}
	if svc.CurrentOwner() != "bob" {
		t.Errorf("current owner = %q, want bob", svc.CurrentOwner())
	}
	task, err := svc.FindTaskByID("T-001")
	if err != nil {
		t.Fatal(err)
	}
	if task.OwnerID != "bob" || task.Description != "Two litres" {
		t.Errorf("task = %+v", task)
	}
}
