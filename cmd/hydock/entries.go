package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/desyatkoff/hydock/internal/dock"
	"github.com/desyatkoff/hydock/internal/surface"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Print the entries the dock would show right now",
	Long: `Query Hyprland once, reconcile the result with the pinned and ignored
applications from the config file, and print the resulting dock entries.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger(cmd)
		configPath, stylePath, err := paths(cmd, logger)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		eng, err := buildEngine(logger, configPath, stylePath, surface.NewRecorder("dock"), surface.NewRecorder("trigger"))
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		eng.Refresh(ctx)
		return writeEntries(os.Stdout, eng.Entries(), format)
	},
}

func init() {
	entriesCmd.Flags().String("format", "text", "output format: text, json or yaml")
	entriesCmd.Flags().Duration("timeout", 3*time.Second, "how long to wait for Hyprland")
	rootCmd.AddCommand(entriesCmd)
}

func writeEntries(w io.Writer, entries []dock.Entry, format string) error {
	if entries == nil {
		entries = []dock.Entry{}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(entries)
	case "text", "":
		if len(entries) == 0 {
			fmt.Fprintln(w, "No entries")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CLASS\tWINDOWS\tSTATE")
		for _, e := range entries {
			state := "running"
			if e.Windows == 0 {
				state = "pinned"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Class, e.Windows, state)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported format %q (use text, json or yaml)", format)
	}
}
