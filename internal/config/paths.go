package config

import (
	"os"
	"path/filepath"
)

const (
	appDir         = "hydock"
	configFileName = "config.toml"
	styleFileName  = "style.css"
)

// Dir returns the hydock configuration directory, honouring XDG_CONFIG_HOME.
func Dir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appDir), nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		return "", ErrNoHome
	}
	return filepath.Join(home, ".config", appDir), nil
}

// DefaultPath returns the location of config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DefaultStylePath returns the location of the optional stylesheet.
func DefaultStylePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, styleFileName), nil
}
