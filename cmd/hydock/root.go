package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/desyatkoff/hydock/internal/config"
	"github.com/desyatkoff/hydock/internal/util"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "hydock",
	Short:         "A dock for Hyprland",
	Long:          "hydock shows one entry per running or pinned application, focuses or launches applications on click, and can hide itself along a screen edge.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().String("config", "", "path to config file (default $XDG_CONFIG_HOME/hydock/config.toml)")
	rootCmd.PersistentFlags().String("style", "", "path to stylesheet (default $XDG_CONFIG_HOME/hydock/style.css)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace|debug|info|warn|error)")
}

// paths resolves the config and style locations from flags or defaults. When
// no config directory can be located the missing path is left empty, which
// means built-in defaults and no stylesheet.
func paths(cmd *cobra.Command, logger *util.Logger) (configPath, stylePath string, err error) {
	configPath, _ = cmd.Flags().GetString("config")
	stylePath, _ = cmd.Flags().GetString("style")
	if configPath == "" {
		if configPath, err = defaultPath(config.DefaultPath, logger, "config"); err != nil {
			return "", "", err
		}
	}
	if stylePath == "" {
		if stylePath, err = defaultPath(config.DefaultStylePath, logger, "stylesheet"); err != nil {
			return "", "", err
		}
	}
	return configPath, stylePath, nil
}

func defaultPath(resolve func() (string, error), logger *util.Logger, what string) (string, error) {
	path, err := resolve()
	if errors.Is(err, config.ErrNoHome) {
		logger.Warnf("no %s location: %v; using built-in defaults", what, err)
		return "", nil
	}
	return path, err
}

func newLogger(cmd *cobra.Command) *util.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return util.NewLogger(util.ParseLogLevel(level))
}
