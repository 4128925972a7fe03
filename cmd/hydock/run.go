package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/desyatkoff/hydock/internal/control"
	"github.com/desyatkoff/hydock/internal/surface"
	termui "github.com/desyatkoff/hydock/internal/ui/term"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the dock",
	Long: `Run the dock until interrupted. The dock refreshes every second, serves the
control socket used by hydockctl, and refreshes early when the config file or
stylesheet changes. SIGHUP forces a refresh.`,
	RunE: runDock,
}

func init() {
	runCmd.Flags().String("render", "auto", "where to paint the dock: auto, term or none")
	runCmd.Flags().String("socket", "", "control socket path (default $XDG_RUNTIME_DIR/hydock/control.sock)")
	rootCmd.AddCommand(runCmd)
}

func runDock(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd)
	configPath, stylePath, err := paths(cmd, logger)
	if err != nil {
		return err
	}
	render, _ := cmd.Flags().GetString("render")
	socketPath, _ := cmd.Flags().GetString("socket")

	var termSurface *termui.Surface
	var dockSurface surface.Surface
	switch render {
	case "term":
		termSurface = termui.NewSurface()
	case "auto":
		if term.IsTerminal(int(os.Stdout.Fd())) {
			termSurface = termui.NewSurface()
		}
	case "none":
	default:
		return fmt.Errorf("unsupported render target %q (use auto, term or none)", render)
	}
	if termSurface != nil {
		dockSurface = termSurface
	} else {
		dockSurface = surface.NewRecorder("dock")
	}

	eng, err := buildEngine(logger, configPath, stylePath, dockSurface, surface.NewRecorder("trigger"))
	if err != nil {
		return fmt.Errorf("configure dock: %w", err)
	}
	monitor := newConfigMonitor(configPath, logger.Named("config"), eng)

	watcher, targets, err := newFileWatcher(logger, configPath, stylePath)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer watcher.Close()
	changes := make(chan string, 1)
	go watchFiles(logger, watcher, targets, changes)
	configAbs := ""
	if configPath != "" {
		configAbs, _ = filepath.Abs(configPath)
	}

	ctrlSrv, err := control.NewServer(eng, logger.Named("control"), socketPath)
	if err != nil {
		return fmt.Errorf("start control server: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errs := make(chan error, 3)
	go func() {
		errs <- eng.Run(ctx)
	}()
	go func() {
		errs <- ctrlSrv.Serve(ctx)
	}()
	if termSurface != nil {
		renderer := termui.NewRenderer(termSurface, os.Stdout)
		go func() {
			errs <- renderer.Run(ctx)
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigs)

	for {
		select {
		case err := <-errs:
			cancel()
			eng.Wait()
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("dock exited: %w", err)
			}
			logger.Infof("dock stopped")
			return nil
		case name := <-changes:
			if configAbs != "" && filepath.Clean(name) == filepath.Clean(configAbs) {
				if err := monitor.Reload("config file updated"); err != nil {
					logger.Errorf("config reload: %v", err)
				}
				continue
			}
			logger.Infof("stylesheet updated, refreshing dock")
			eng.RequestRefresh()
		case sig := <-sigs:
			switch sig {
			case syscall.SIGHUP:
				if err := monitor.Reload("received SIGHUP"); err != nil {
					logger.Errorf("config reload: %v", err)
				}
			case os.Interrupt, syscall.SIGTERM:
				logger.Infof("received %s, shutting down", sig)
				cancel()
			}
		}
	}
}
