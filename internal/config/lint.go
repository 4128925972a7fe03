package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/desyatkoff/hydock/internal/layout"
)

// LintError describes a setting that loads but will not behave as the user
// probably intended.
type LintError struct {
	Path    string
	Message string
}

func (e LintError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Lint reports suspicious settings. None of them stop the dock from running.
func (s Settings) Lint() []LintError {
	var errs []LintError
	if s.DockPosition != "" {
		if _, ok := layout.LookupEdge(s.DockPosition); !ok {
			errs = append(errs, LintError{
				Path:    "config.dock_position",
				Message: fmt.Sprintf("unknown position %q, falling back to bottom", s.DockPosition),
			})
		}
	}
	if s.ShowAppLauncher && strings.TrimSpace(s.AppLauncherCommand) == "" {
		errs = append(errs, LintError{
			Path:    "config.app_launcher_command",
			Message: "launcher is shown but has no command",
		})
	}
	if s.IconSize < 0 {
		errs = append(errs, LintError{
			Path:    "config.icon_size",
			Message: fmt.Sprintf("icon size %d cannot be negative", s.IconSize),
		})
	}
	switch s.DispatchStrategy {
	case "", "hyprctl", "socket":
	default:
		errs = append(errs, LintError{
			Path:    "config.dispatch_strategy",
			Message: fmt.Sprintf("unknown strategy %q (use hyprctl or socket)", s.DispatchStrategy),
		})
	}

	ignored := make(map[string]struct{}, len(s.IgnoreApplications))
	for _, class := range s.IgnoreApplications {
		ignored[strings.ToLower(class)] = struct{}{}
	}
	seen := make(map[string]struct{}, len(s.PinnedApplications))
	for i, class := range s.PinnedApplications {
		key := strings.ToLower(class)
		path := fmt.Sprintf("config.pinned_applications[%d]", i)
		if _, dup := seen[key]; dup {
			errs = append(errs, LintError{Path: path, Message: fmt.Sprintf("%q is pinned more than once", class)})
		}
		seen[key] = struct{}{}
		if _, both := ignored[key]; both {
			errs = append(errs, LintError{Path: path, Message: fmt.Sprintf("%q is also ignored and will never be shown", class)})
		}
	}
	for class, icon := range s.OverrideAppIcons {
		if strings.TrimSpace(icon) == "" {
			errs = append(errs, LintError{
				Path:    fmt.Sprintf("config.override_app_icons.%s", class),
				Message: "icon override is empty",
			})
		}
	}
	return errs
}

// LintFile reads the configuration at path and lints it. Unknown keys are
// reported as lint errors; a document that cannot be decoded at all is
// returned as an error.
func LintFile(path string) ([]LintError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	format := FormatFromPath(path)
	settings, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	var errs []LintError
	if err := CheckStrict(data, format); err != nil {
		errs = append(errs, LintError{Message: err.Error()})
	}
	return append(errs, settings.Lint()...), nil
}
