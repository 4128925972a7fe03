package main

import (
	"github.com/desyatkoff/hydock/internal/config"
	"github.com/desyatkoff/hydock/internal/dispatch"
	"github.com/desyatkoff/hydock/internal/engine"
	"github.com/desyatkoff/hydock/internal/ipc"
	"github.com/desyatkoff/hydock/internal/metrics"
	"github.com/desyatkoff/hydock/internal/surface"
	"github.com/desyatkoff/hydock/internal/util"
)

// buildEngine wires a dock engine talking to the live Hyprland instance.
func buildEngine(logger *util.Logger, configPath, stylePath string, dockSurface, trigger surface.Surface) (*engine.Engine, error) {
	settings, err := config.LoadOrDefault(configPath)
	if err != nil {
		logger.Warnf("config %s unusable, using defaults: %v", configPath, err)
	}
	requested := ipc.DispatchStrategy(settings.DispatchStrategy)
	switch requested {
	case ipc.DispatchStrategySocket, ipc.DispatchStrategyHyprctl, "":
	default:
		logger.Warnf("unknown dispatch strategy %q, using hyprctl", settings.DispatchStrategy)
		requested = ipc.DispatchStrategyHyprctl
	}
	hypr, strategy, err := ipc.NewHyprland(logger.Named("ipc"), requested)
	if err != nil {
		return nil, err
	}
	logger.Debugf("using %s dispatch strategy", strategy)

	collector := metrics.NewCollector()
	spawner := dispatch.NewProcessSpawner(logger.Named("spawn"))
	dispatcher := dispatch.New(hypr, spawner, logger.Named("dispatch"), collector)
	return engine.New(hypr, dispatcher, dockSurface, trigger, logger.Named("engine"), collector, engine.Options{
		ConfigPath: configPath,
		StylePath:  stylePath,
	}), nil
}
