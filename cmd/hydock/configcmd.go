package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/desyatkoff/hydock/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		force, _ := cmd.Flags().GetBool("force")
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
			if config.Format(format) == config.FormatYAML {
				path = strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
			}
		}
		if err := writeDefaultConfig(path, config.Format(format), force); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config and stylesheet locations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		configPath, stylePath, err := paths(cmd, newLogger(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config: %s\nstyle:  %s\n", orNone(configPath), orNone(stylePath))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		configPath, _, err := paths(cmd, newLogger(cmd))
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		settings, err := config.LoadOrDefault(configPath)
		if err != nil {
			return err
		}
		data, err := config.Encode(settings, config.Format(format))
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configInitCmd.Flags().String("format", string(config.FormatTOML), "file format: toml or yaml")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configShowCmd.Flags().String("format", string(config.FormatTOML), "output format: toml or yaml")
	configCmd.AddCommand(configInitCmd, configPathCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func orNone(path string) string {
	if path == "" {
		return "(none, built-in defaults)"
	}
	return path
}

func writeDefaultConfig(path string, format config.Format, force bool) error {
	switch format {
	case config.FormatTOML, config.FormatYAML:
	default:
		return fmt.Errorf("unsupported format %q (use toml or yaml)", format)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	data, err := config.Encode(config.Default(), format)
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
