package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/desyatkoff/hydock/internal/config"
	"github.com/desyatkoff/hydock/internal/util"
)

type refresher interface {
	RequestRefresh()
}

// configMonitor reports what changed whenever the config file is edited and
// asks the dock for an immediate refresh. The dock itself re-reads the file
// on every tick, so a rejected edit only affects logging.
type configMonitor struct {
	path           string
	logger         *util.Logger
	dock           refresher
	lastSettings   config.Settings
	lastSerialized []byte
}

func newConfigMonitor(path string, logger *util.Logger, dock refresher) *configMonitor {
	m := &configMonitor{path: path, logger: logger, dock: dock, lastSettings: config.Default()}
	if raw, err := os.ReadFile(path); err == nil {
		if settings, err := config.Parse(raw, config.FormatFromPath(path)); err == nil {
			m.lastSettings = settings
			m.lastSerialized = raw
		}
	}
	return m
}

// Reload inspects the file and requests a refresh. The returned error
// describes why the new contents were rejected.
func (m *configMonitor) Reload(reason string) error {
	m.logger.Infof("%s, refreshing dock", reason)
	defer m.dock.RequestRefresh()

	raw, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		m.logger.Infof("config %s removed, using defaults", m.path)
		m.accept(config.Default(), nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	format := config.FormatFromPath(m.path)
	settings, err := config.Parse(raw, format)
	if err != nil {
		m.logDiff(raw)
		return err
	}
	if err := config.CheckStrict(raw, format); err != nil {
		m.logger.Warnf("config contains keys hydock ignores: %v", err)
	}
	if lintErrs := settings.Lint(); len(lintErrs) > 0 {
		m.logLintErrors(lintErrs)
	}
	m.accept(settings, raw)
	return nil
}

func (m *configMonitor) accept(settings config.Settings, raw []byte) {
	if diff := config.DiffSettings(m.lastSettings, settings); diff != "" {
		m.logger.Debugf("settings changed (-old +new):\n%s", diff)
	}
	m.lastSettings = settings
	m.lastSerialized = append([]byte(nil), raw...)
}

func (m *configMonitor) logDiff(current []byte) {
	diff := config.DiffSerialized(m.lastSerialized, current)
	if diff == "" {
		m.logger.Warnf("config change rejected, defaults stay in effect; unable to compute diff vs last valid config")
		return
	}
	m.logger.Warnf("config change rejected, defaults stay in effect; diff vs last valid config:\n%s", diff)
}

func (m *configMonitor) logLintErrors(errs []config.LintError) {
	m.logger.Warnf("config validation found %d issue(s):", len(errs))
	for _, lintErr := range errs {
		if lintErr.Path != "" {
			m.logger.Warnf(" - %s: %s", lintErr.Path, lintErr.Message)
			continue
		}
		m.logger.Warnf(" - %s", lintErr.Message)
	}
}
