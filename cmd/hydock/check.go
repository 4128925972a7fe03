package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/desyatkoff/hydock/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate a configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			var err error
			if path, _, err = paths(cmd, newLogger(cmd)); err != nil {
				return err
			}
			if path == "" {
				return fmt.Errorf("no config file to check: %w", config.ErrNoHome)
			}
		}
		return runCheck(path, os.Stdout, os.Stderr)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(path string, stdout, stderr io.Writer) error {
	lintErrs, err := config.LintFile(path)
	if err != nil {
		return err
	}
	if len(lintErrs) == 0 {
		fmt.Fprintln(stdout, "Configuration OK")
		return nil
	}

	fmt.Fprintf(stderr, "Configuration has %d issue(s):\n", len(lintErrs))
	for _, lintErr := range lintErrs {
		fmt.Fprintf(stderr, "- %s\n", lintErr.Error())
	}
	return fmt.Errorf("configuration validation failed")
}
