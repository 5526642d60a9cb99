package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withVersion(t *testing.T, v, c string) {
	t.Helper()
	oldV, oldC := Version, Commit
	Version, Commit = v, c
	t.Cleanup(func() { Version, Commit = oldV, oldC })
}

func TestFillFromSettings(t *testing.T) {
	withVersion(t, "", "")

	fillFromSettings([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2024-03-05T10:00:00Z"},
	})

	if Commit != "0123456-dirty" {
		t.Errorf("Commit = %q, want 0123456-dirty", Commit)
	}
	if Version != "dev-20240305" {
		t.Errorf("Version = %q, want dev-20240305", Version)
	}
}

func TestFillFromSettingsKeepsLinkedValues(t *testing.T) {
	withVersion(t, "v1.2.3", "abc123")

	fillFromSettings([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "fffffffffff"},
		{Key: "vcs.time", Value: "2024-03-05T10:00:00Z"},
	})

	if Version != "v1.2.3" || Commit != "abc123" {
		t.Errorf("got %s, linked values were overwritten", Full())
	}
}

func TestFull(t *testing.T) {
	withVersion(t, "v0.1.0", "deadbee")
	if got := Full(); got != "v0.1.0 (commit: deadbee)" {
		t.Errorf("Full() = %q", got)
	}
	if !strings.Contains(Full(), Commit) {
		t.Error("Full() does not include commit")
	}
}
