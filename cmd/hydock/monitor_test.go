package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desyatkoff/hydock/internal/util"
)

type countingRefresher struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRefresher) RequestRefresh() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *countingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func writeConfig(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func newTestMonitor(t *testing.T, initial string) (*configMonitor, string, *countingRefresher, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if initial != "" {
		writeConfig(t, path, initial)
	}
	var logs bytes.Buffer
	logger := util.NewLoggerWithWriter(util.LevelDebug, &logs)
	dock := &countingRefresher{}
	return newConfigMonitor(path, logger, dock), path, dock, &logs
}

func TestReloadAcceptsValidEdit(t *testing.T) {
	monitor, path, dock, logs := newTestMonitor(t, "[config]\ndock_position = \"bottom\"\n")
	writeConfig(t, path, "[config]\ndock_position = \"left\"\npinned_applications = [\"Firefox\"]\n")

	if err := monitor.Reload("config file updated"); err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	if dock.count() != 1 {
		t.Fatalf("expected one refresh request, got %d", dock.count())
	}
	if monitor.lastSettings.DockPosition != "left" {
		t.Fatalf("expected new position to be remembered, got %q", monitor.lastSettings.DockPosition)
	}
	if got := monitor.lastSettings.PinnedApplications; len(got) != 1 || got[0] != "firefox" {
		t.Fatalf("expected normalized pinned list, got %v", got)
	}
	output := logs.String()
	if strings.Contains(output, "WARN") {
		t.Fatalf("expected no warnings, got %q", output)
	}
	if !strings.Contains(output, "settings changed") {
		t.Fatalf("expected settings diff at debug level, got %q", output)
	}
}

func TestReloadLogsDiffOnRejectedEdit(t *testing.T) {
	initial := "[config]\ndock_position = \"top\"\n"
	monitor, path, dock, logs := newTestMonitor(t, initial)
	writeConfig(t, path, "[config]\ndock_position = \n")

	if err := monitor.Reload("config file updated"); err == nil {
		t.Fatalf("expected malformed config to be rejected")
	}
	if dock.count() != 1 {
		t.Fatalf("rejected edits must still request a refresh, got %d", dock.count())
	}
	if monitor.lastSettings.DockPosition != "top" {
		t.Fatalf("expected last valid settings to be kept, got %q", monitor.lastSettings.DockPosition)
	}
	output := logs.String()
	if !strings.Contains(output, "config change rejected") {
		t.Fatalf("expected rejection log, got %q", output)
	}
	if !strings.Contains(output, "top") || !strings.Contains(output, "dock_position = ") {
		t.Fatalf("expected diff against last valid config, got %q", output)
	}
}

func TestReloadFallsBackToDefaultsWhenFileRemoved(t *testing.T) {
	monitor, path, dock, logs := newTestMonitor(t, "[config]\nauto_hide = true\n")
	if !monitor.lastSettings.AutoHide {
		t.Fatalf("expected initial settings to be loaded")
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove config: %v", err)
	}

	if err := monitor.Reload("config file updated"); err != nil {
		t.Fatalf("Reload returned error: %v", err)
	}
	if monitor.lastSettings.AutoHide {
		t.Fatalf("expected defaults after removal")
	}
	if dock.count() != 1 {
		t.Fatalf("expected one refresh request, got %d", dock.count())
	}
	if !strings.Contains(logs.String(), "using defaults") {
		t.Fatalf("expected removal to be logged, got %q", logs.String())
	}
}

func TestReloadReportsLintIssues(t *testing.T) {
	monitor, path, _, logs := newTestMonitor(t, "")
	writeConfig(t, path, "[config]\ndock_position = \"middle\"\npinned_applications = [\"kitty\"]\nignore_applications = [\"Kitty\"]\n")

	if err := monitor.Reload("received SIGHUP"); err != nil {
		t.Fatalf("lint issues must not reject the config: %v", err)
	}
	output := logs.String()
	if !strings.Contains(output, "config validation found 2 issue(s)") {
		t.Fatalf("expected lint summary, got %q", output)
	}
	if !strings.Contains(output, "config.dock_position") {
		t.Fatalf("expected position lint, got %q", output)
	}
	if !strings.Contains(output, "also ignored") {
		t.Fatalf("expected pinned/ignored lint, got %q", output)
	}
}

func TestReloadWarnsAboutUnknownKeys(t *testing.T) {
	monitor, path, _, logs := newTestMonitor(t, "")
	writeConfig(t, path, "[config]\nauto_hide = true\nwobble = 3\n")

	if err := monitor.Reload("config file updated"); err != nil {
		t.Fatalf("unknown keys must not reject the config: %v", err)
	}
	if !monitor.lastSettings.AutoHide {
		t.Fatalf("expected known keys to apply")
	}
	if !strings.Contains(logs.String(), "keys hydock ignores") {
		t.Fatalf("expected unknown key warning, got %q", logs.String())
	}
}
