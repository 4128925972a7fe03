package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/desyatkoff/hydock/internal/config"
	"github.com/desyatkoff/hydock/internal/control/client"
)

func newEntriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List the entries the dock currently shows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			entries, err := cli.Entries(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No entries")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CLASS\tWINDOWS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%d\n", e.Class, e.Windows)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Bool("json", false, "print JSON instead of a table")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"visibility"},
		Short:   "Show visibility and placement",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			status, err := cli.Visibility(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Visibility: %s\n", status.Visibility)
			fmt.Fprintf(out, "Position:   %s\n", status.Position)
			fmt.Fprintf(out, "Auto-hide:  %t\n", status.AutoHide)
			fmt.Fprintf(out, "Entries:    %d\n", status.Entries)
			if !status.LastTick.IsZero() {
				fmt.Fprintf(out, "Last tick:  %s\n", status.LastTick.Format(time.RFC3339))
			}
			if status.ConfigError != "" {
				fmt.Fprintf(out, "Config:     %s\n", status.ConfigError)
			}
			return nil
		},
	}
}

type dispatchFunc func(*client.Client, context.Context, string) (client.DispatchResult, error)

func newDispatchCmd(use, short string, fn dispatchFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <class>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, ctx, cancel, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			res, err := fn(cli, ctx, args[0])
			if err != nil {
				return err
			}
			line := fmt.Sprintf("%s %s: %s", res.Action, res.Class, res.Result)
			if res.Address != "" {
				line += " (" + res.Address + ")"
			}
			if res.Fallback {
				line += ", launched because no window was found"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			if res.Error != "" {
				return fmt.Errorf("%s %s: %s", res.Action, res.Class, res.Error)
			}
			return nil
		},
	}
}

func newLaunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "launch",
		Short: "Run the configured application launcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			if err := cli.Launch(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Launcher started")
			return nil
		},
	}
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Refresh the dock immediately",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			if err := cli.Reload(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reload requested")
			return nil
		},
	}
}

func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show refresh and dispatch counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			snap, err := cli.Metrics(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ticks: %d (fetch errors: %d)\n", snap.Ticks, snap.FetchErrors)
			fmt.Fprintf(out, "Launcher runs: %d\n", snap.LauncherRuns)
			t := snap.Totals
			fmt.Fprintf(out, "Focused: %d  Closed: %d  Launched: %d  Fallbacks: %d  Failures: %d\n",
				t.Focused, t.Closed, t.Launched, t.Fallbacks, t.Failures)
			if len(snap.Classes) == 0 {
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CLASS\tFOCUSED\tCLOSED\tLAUNCHED\tFAILURES")
			for _, c := range snap.Classes {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", c.Class, c.Focused, c.Closed, c.Launched, c.Failures)
			}
			return tw.Flush()
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show recent refreshes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, ctx, cancel, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			res, err := cli.History(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Ticks) == 0 {
				fmt.Fprintln(out, "No refreshes recorded")
				return nil
			}
			for _, tick := range res.Ticks {
				line := fmt.Sprintf("%s %-8s windows=%d entries=%d took=%s",
					tick.Timestamp.Format("15:04:05"), tick.Reason, tick.Windows, tick.Entries, tick.Duration)
				var problems []string
				if tick.FetchError != "" {
					problems = append(problems, "fetch: "+tick.FetchError)
				}
				if tick.ConfigError != "" {
					problems = append(problems, "config: "+tick.ConfigError)
				}
				if len(problems) > 0 {
					line += " [" + strings.Join(problems, "; ") + "]"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				return fmt.Errorf("check requires --config <path>")
			}
			return runCheck(path, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().String("config", "", "path to configuration file")
	return cmd
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

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
