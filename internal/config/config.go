package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/desyatkoff/hydock/internal/layout"
)

const (
	DefaultLauncherCommand  = "rofi -show drun"
	DefaultLauncherIcon     = "applications-all-symbolic"
	DefaultDockPosition     = "bottom"
	DefaultIconSize         = 32
	DefaultLaunchPrefix     = "/usr/bin"
	DefaultDispatchStrategy = "hyprctl"
)

// ErrNoHome is returned when neither XDG_CONFIG_HOME nor HOME is set.
var ErrNoHome = errors.New("cannot locate config directory: HOME is not set")

// Format selects the on-disk encoding of a configuration file.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the encoding from the file extension. Anything that
// is not YAML is read as TOML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// File is the top-level document; every setting lives under a [config] table.
type File struct {
	Config Settings `toml:"config" yaml:"config"`
}

// Settings is the dock configuration, re-read on every refresh.
type Settings struct {
	AppLauncherCommand string            `toml:"app_launcher_command" yaml:"app_launcher_command"`
	AppLauncherIcon    string            `toml:"app_launcher_icon" yaml:"app_launcher_icon"`
	AutoHide           bool              `toml:"auto_hide" yaml:"auto_hide"`
	ChaosMode          bool              `toml:"chaos_mode" yaml:"chaos_mode"`
	DockPosition       string            `toml:"dock_position" yaml:"dock_position"`
	IgnoreApplications []string          `toml:"ignore_applications" yaml:"ignore_applications"`
	PinnedApplications []string          `toml:"pinned_applications" yaml:"pinned_applications"`
	OverrideAppIcons   map[string]string `toml:"override_app_icons" yaml:"override_app_icons"`
	ShowAppLauncher    bool              `toml:"show_app_launcher" yaml:"show_app_launcher"`
	ShowSeparator      bool              `toml:"show_separator" yaml:"show_separator"`
	IconSize           int               `toml:"icon_size" yaml:"icon_size"`
	RefreshOnEvents    bool              `toml:"refresh_on_events" yaml:"refresh_on_events"`
	DispatchStrategy   string            `toml:"dispatch_strategy" yaml:"dispatch_strategy"`
	LaunchPrefix       string            `toml:"launch_prefix" yaml:"launch_prefix"`
}

// Default returns the compiled-in settings used whenever the file is missing
// or cannot be decoded.
func Default() Settings {
	return Settings{
		AppLauncherCommand: DefaultLauncherCommand,
		AppLauncherIcon:    DefaultLauncherIcon,
		DockPosition:       DefaultDockPosition,
		IgnoreApplications: []string{},
		PinnedApplications: []string{},
		OverrideAppIcons:   map[string]string{},
		ShowAppLauncher:    true,
		ShowSeparator:      true,
		IconSize:           DefaultIconSize,
		DispatchStrategy:   DefaultDispatchStrategy,
		LaunchPrefix:       DefaultLaunchPrefix,
	}
}

// Parse decodes a configuration document. Keys absent from the document keep
// their default values.
func Parse(data []byte, format Format) (Settings, error) {
	doc, err := decode(data, format, false)
	if err != nil {
		return Settings{}, err
	}
	doc.Config.normalize()
	return doc.Config, nil
}

// CheckStrict decodes the document rejecting keys hydock does not know about.
func CheckStrict(data []byte, format Format) error {
	_, err := decode(data, format, true)
	return err
}

func decode(data []byte, format Format, strict bool) (File, error) {
	doc := File{Config: Default()}
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(strict)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return File{}, fmt.Errorf("decode config: %w", err)
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		if strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(&doc); err != nil {
			var missing *toml.StrictMissingError
			if errors.As(err, &missing) {
				return File{}, fmt.Errorf("decode config: unknown keys:\n%s", missing.String())
			}
			return File{}, fmt.Errorf("decode config: %w", err)
		}
	}
	return doc, nil
}

// Load reads and decodes the configuration at path.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, FormatFromPath(path))
}

// LoadOrDefault reads the configuration at path and falls back to Default on
// any failure. The returned error is informational only.
func LoadOrDefault(path string) (Settings, error) {
	if path == "" {
		return Default(), nil
	}
	settings, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), err
	}
	return settings, nil
}

// Encode serializes settings into a document of the given format.
func Encode(settings Settings, format Format) ([]byte, error) {
	doc := File{Config: settings}
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return toml.Marshal(doc)
	}
}

func (s *Settings) normalize() {
	s.DockPosition = strings.ToLower(strings.TrimSpace(s.DockPosition))
	s.DispatchStrategy = strings.ToLower(strings.TrimSpace(s.DispatchStrategy))
	s.PinnedApplications = lowerAll(s.PinnedApplications)
	s.IgnoreApplications = lowerAll(s.IgnoreApplications)
	if len(s.OverrideAppIcons) > 0 {
		icons := make(map[string]string, len(s.OverrideAppIcons))
		for class, icon := range s.OverrideAppIcons {
			icons[strings.ToLower(strings.TrimSpace(class))] = icon
		}
		s.OverrideAppIcons = icons
	}
	if s.OverrideAppIcons == nil {
		s.OverrideAppIcons = map[string]string{}
	}
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Placement returns the anchor and orientations for the configured position.
func (s Settings) Placement() layout.Placement {
	return layout.PlacementFor(s.DockPosition)
}

// EffectiveIconSize returns the icon size, replacing nonsensical values with
// the default.
func (s Settings) EffectiveIconSize() int {
	if s.IconSize <= 0 {
		return DefaultIconSize
	}
	return s.IconSize
}

// EffectiveLaunchPrefix returns the directory application binaries are
// launched from.
func (s Settings) EffectiveLaunchPrefix() string {
	if strings.TrimSpace(s.LaunchPrefix) == "" {
		return DefaultLaunchPrefix
	}
	return s.LaunchPrefix
}
