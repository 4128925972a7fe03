package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/desyatkoff/hydock/internal/engine"
	"github.com/desyatkoff/hydock/internal/surface"
	termui "github.com/desyatkoff/hydock/internal/ui/term"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Draw the dock in the terminal",
	Long: `Draw the dock in the terminal instead of on a layer surface. With --once a
single frame is printed after one refresh; otherwise the preview follows the
live dock until interrupted.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Bool("once", false, "print a single frame and exit")
	previewCmd.Flags().Int("width", 0, "frame width in columns (default terminal width)")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd)
	configPath, stylePath, err := paths(cmd, logger)
	if err != nil {
		return err
	}
	once, _ := cmd.Flags().GetBool("once")
	width, _ := cmd.Flags().GetInt("width")

	dockSurface := termui.NewSurface()
	eng, err := buildEngine(logger, configPath, stylePath, dockSurface, surface.NewRecorder("trigger"))
	if err != nil {
		return err
	}
	renderer := termui.NewRenderer(dockSurface, os.Stdout)
	renderer.Width = width
	renderer.Status = func() string { return previewStatus(eng.Status()) }

	if once {
		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		defer cancel()
		eng.Refresh(ctx)
		renderer.Once()
		return nil
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	errs := make(chan error, 2)
	go func() { errs <- eng.Run(ctx) }()
	go func() { errs <- renderer.Run(ctx) }()
	err = <-errs
	cancel()
	eng.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func previewStatus(st engine.Status) string {
	line := fmt.Sprintf("hydock · %s · %s · %d entries", st.Position, st.Visibility, st.Entries)
	if st.AutoHide {
		line += " · auto-hide"
	}
	if st.ConfigError != "" {
		line += "\nconfig error: " + st.ConfigError
	}
	return line
}
