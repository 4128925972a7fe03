package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/desyatkoff/hydock/internal/config"
	"github.com/desyatkoff/hydock/internal/dispatch"
	"github.com/desyatkoff/hydock/internal/engine"
	"github.com/desyatkoff/hydock/internal/ipc"
	"github.com/desyatkoff/hydock/internal/metrics"
	"github.com/desyatkoff/hydock/internal/surface"
	"github.com/desyatkoff/hydock/internal/util"
)

// smokeClient reads from the live compositor but never changes it.
type smokeClient struct {
	*ipc.Client
}

func (c *smokeClient) Dispatch(_ context.Context, args ...string) (string, error) {
	fmt.Printf("dispatch (skipped): %s\n", strings.Join(args, " "))
	return "ok", nil
}

type smokeSpawner struct{}

func (smokeSpawner) Spawn(name string, args ...string) error {
	fmt.Printf("spawn (skipped): %s\n", strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return nil
}

func main() {
	defaultConfig, _ := config.DefaultPath()
	defaultStyle, _ := config.DefaultStylePath()

	cfgPath := flag.String("config", defaultConfig, "path to config file")
	stylePath := flag.String("style", defaultStyle, "path to stylesheet")
	logLevel := flag.String("log-level", "info", "log level (trace|debug|info|warn|error)")
	focus := flag.String("focus", "", "class to resolve as if its entry were clicked")
	flag.Parse()

	logger := util.NewLogger(util.ParseLogLevel(*logLevel))

	settings, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		logger.Warnf("config %s unusable, using defaults: %v", *cfgPath, err)
	}

	client := &smokeClient{Client: ipc.NewClient()}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	windows, err := client.ListClients(ctx)
	if err != nil {
		exitErr(fmt.Errorf("list clients: %w", err))
	}

	fmt.Printf("Loaded config from %s\n", *cfgPath)
	fmt.Println("\n=== Configuration ===")
	if err := marshalYAML(config.File{Config: settings}); err != nil {
		logger.Warnf("failed to print config: %v", err)
	}

	fmt.Println("\n=== Window Snapshot ===")
	if err := marshalJSON(windows); err != nil {
		logger.Warnf("failed to print window snapshot: %v", err)
	}

	collector := metrics.NewCollector()
	dispatcher := dispatch.New(client, smokeSpawner{}, logger.Named("dispatch"), collector)
	dockSurface := surface.NewRecorder("dock")
	trigger := surface.NewRecorder("trigger")
	eng := engine.New(client, dispatcher, dockSurface, trigger, logger.Named("engine"), collector, engine.Options{
		ConfigPath: *cfgPath,
		StylePath:  *stylePath,
	})
	eng.Refresh(ctx)

	children := dockSurface.Children()
	if len(children) == 0 {
		fmt.Println("\nDock is empty for the current snapshot.")
	} else {
		fmt.Println("\n=== Dock Widgets ===")
		for _, w := range children {
			switch w.Kind {
			case surface.KindApp:
				fmt.Printf("%-10s %-24s icon=%s dots=%d\n", w.Kind, w.Class, w.Icon, w.Dots)
			default:
				fmt.Printf("%-10s %s\n", w.Kind, w.Name)
			}
		}
	}

	status := eng.Status()
	fmt.Printf("\nPosition: %s  Visibility: %s  Auto-hide: %t\n", status.Position, status.Visibility, status.AutoHide)
	if status.ConfigError != "" {
		fmt.Printf("Config error: %s\n", status.ConfigError)
	}

	if *focus != "" {
		fmt.Printf("\n=== Focus %s ===\n", *focus)
		fmt.Println(eng.Focus(ctx, *focus))
		eng.Wait()
	}
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func marshalYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}

func marshalJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
