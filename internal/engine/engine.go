package engine

import (
	"context"
	"sync"
	"time"

	"github.com/desyatkoff/hydock/internal/config"
	"github.com/desyatkoff/hydock/internal/dispatch"
	"github.com/desyatkoff/hydock/internal/dock"
	"github.com/desyatkoff/hydock/internal/ipc"
	"github.com/desyatkoff/hydock/internal/layout"
	"github.com/desyatkoff/hydock/internal/metrics"
	"github.com/desyatkoff/hydock/internal/state"
	"github.com/desyatkoff/hydock/internal/style"
	"github.com/desyatkoff/hydock/internal/surface"
	"github.com/desyatkoff/hydock/internal/util"
	"github.com/desyatkoff/hydock/internal/visibility"
)

// DefaultInterval is the period of the refresh ticker.
const DefaultInterval = time.Second

const inputBuffer = 64

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	*time.Ticker
}

func (t realTicker) C() <-chan time.Time {
	return t.Ticker.C
}

type subscribeFunc func(ctx context.Context, logger *util.Logger) (<-chan ipc.Event, error)

// Options configures an Engine.
type Options struct {
	// ConfigPath is re-read on every refresh. Empty means built-in defaults.
	ConfigPath string
	// StylePath is reapplied on every refresh when readable.
	StylePath string
	Interval  time.Duration
}

// Status is the published view of the dock for the control plane.
type Status struct {
	Visibility  string    `json:"visibility"`
	AutoHide    bool      `json:"autoHide"`
	Position    string    `json:"position"`
	Entries     int       `json:"entries"`
	LastTick    time.Time `json:"lastTick,omitempty"`
	ConfigError string    `json:"configError,omitempty"`
}

type hoverInput struct {
	target visibility.Target
	ev     surface.Hover
}

// Engine rebuilds the dock on a fixed period. The goroutine running Run owns
// both surfaces and the visibility controller; pointer events reach it through
// channels and dispatches leave it on their own goroutines.
type Engine struct {
	source     state.DataSource
	dispatcher *dispatch.Dispatcher
	logger     *util.Logger
	metrics    *metrics.Collector

	dock    surface.Surface
	trigger surface.Surface
	vis     *visibility.Controller

	configPath string
	stylePath  string
	interval   time.Duration

	hovers   chan hoverInput
	clicks   chan surface.Click
	requests chan struct{}

	// Owned by the loop goroutine.
	settings      config.Settings
	lastConfigErr string
	styleLoaded   bool

	mu       sync.Mutex
	entries  []dock.Entry
	status   Status
	current  config.Settings
	history  *tickLog
	inflight sync.WaitGroup

	tickerFactory func() ticker
	subscribe     subscribeFunc
}

// New wires an engine to its window source, dispatcher and surfaces.
func New(source state.DataSource, dispatcher *dispatch.Dispatcher, dockSurface, trigger surface.Surface, logger *util.Logger, collector *metrics.Collector, opts Options) *Engine {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	e := &Engine{
		source:     source,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    collector,
		dock:       dockSurface,
		trigger:    trigger,
		configPath: opts.ConfigPath,
		stylePath:  opts.StylePath,
		interval:   interval,
		hovers:     make(chan hoverInput, inputBuffer),
		clicks:     make(chan surface.Click, inputBuffer),
		requests:   make(chan struct{}, 1),
		settings:   config.Default(),
		current:    config.Default(),
		history:    newTickLog(0),
		subscribe:  ipc.Subscribe,
	}
	e.tickerFactory = func() ticker {
		return realTicker{time.NewTicker(e.interval)}
	}
	e.vis = visibility.New(dockSurface, trigger, e.postHover)
	dockSurface.SetClickHandler(e.postClick)
	return e
}

func (e *Engine) postHover(target visibility.Target, ev surface.Hover) {
	select {
	case e.hovers <- hoverInput{target: target, ev: ev}:
	default:
		e.logger.Debugf("dropping %s %s event: input queue full", target, ev)
	}
}

func (e *Engine) postClick(click surface.Click) {
	select {
	case e.clicks <- click:
	default:
		e.logger.Warnf("dropping click on %s: input queue full", click.Widget.Name)
	}
}

// RequestRefresh asks the loop for an immediate rebuild. Requests made while
// one is already pending are coalesced.
func (e *Engine) RequestRefresh() {
	select {
	case e.requests <- struct{}{}:
	default:
	}
}

// Run refreshes once and then on every tick, request or relevant Hyprland
// event until ctx is cancelled. Refresh errors never stop the loop.
func (e *Engine) Run(ctx context.Context) error {
	e.refresh(ctx, ReasonStartup)
	tick := e.newTicker()
	defer tick.Stop()

	events := e.subscribeEvents(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C():
			e.refresh(ctx, ReasonPeriodic)
		case <-e.requests:
			e.refresh(ctx, ReasonRequest)
		case in := <-e.hovers:
			e.vis.HandleHover(in.target, in.ev)
			e.publishVisibility()
		case click := <-e.clicks:
			e.handleClick(ctx, click)
		case ev, ok := <-events:
			if !ok {
				e.logger.Warnf("event stream closed, continuing with periodic refresh only")
				events = nil
				continue
			}
			changed, open := drainEvents(events, ev)
			if changed && e.settings.RefreshOnEvents {
				e.logger.Debugf("window set changed, refreshing")
				e.refresh(ctx, ReasonEvent)
			}
			if !open {
				e.logger.Warnf("event stream closed, continuing with periodic refresh only")
				events = nil
			}
		}
	}
}

// drainEvents consumes the events already queued behind ev so a burst costs a
// single refresh. open is false once the stream has closed.
func drainEvents(events <-chan ipc.Event, ev ipc.Event) (changed, open bool) {
	changed = ev.ChangesWindowSet()
	for {
		select {
		case next, ok := <-events:
			if !ok {
				return changed, false
			}
			changed = changed || next.ChangesWindowSet()
		default:
			return changed, true
		}
	}
}

// Refresh runs one rebuild on the calling goroutine. It must not be used
// while Run is active.
func (e *Engine) Refresh(ctx context.Context) {
	e.refresh(ctx, ReasonRequest)
}

// Wait blocks until every dispatch started by a click has finished.
func (e *Engine) Wait() {
	e.inflight.Wait()
}

func (e *Engine) newTicker() ticker {
	if e.tickerFactory != nil {
		return e.tickerFactory()
	}
	return realTicker{time.NewTicker(e.interval)}
}

func (e *Engine) subscribeEvents(ctx context.Context) <-chan ipc.Event {
	if e.subscribe == nil {
		return nil
	}
	events, err := e.subscribe(ctx, e.logger)
	if err != nil {
		e.logger.Debugf("event stream unavailable: %v", err)
		return nil
	}
	return events
}

func (e *Engine) refresh(ctx context.Context, reason TickReason) {
	start := time.Now()
	record := TickRecord{Timestamp: start, Reason: reason}

	settings := e.loadSettings()
	if e.lastConfigErr != "" {
		record.ConfigError = e.lastConfigErr
	}
	placement := settings.Placement()

	e.vis.Reanchor(placement)
	e.vis.ApplyPolicy(settings.AutoHide)
	e.applyStyle()

	windows, err := e.fetchSnapshot(ctx)
	if err != nil {
		record.FetchError = err.Error()
	}
	record.Windows = len(windows)

	entries := dock.Reconcile(windows, settings)
	children := make([]surface.Widget, 0, len(entries)+2)
	for _, entry := range entries {
		children = append(children, appWidget(entry, settings, placement))
	}
	if settings.ShowAppLauncher {
		if settings.ShowSeparator {
			children = append(children, surface.Widget{
				Kind:        surface.KindSeparator,
				Name:        surface.NameSeparator,
				Orientation: placement.SeparatorOrientation(),
			})
		}
		children = append(children, surface.Widget{
			Kind:        surface.KindLauncher,
			Name:        surface.NameLauncher,
			Icon:        settings.AppLauncherIcon,
			IconSize:    settings.EffectiveIconSize(),
			Orientation: placement.ItemOrientation,
		})
	}
	surface.Rebuild(e.dock, children)
	if e.dispatcher != nil {
		e.dispatcher.SetLaunchPrefix(settings.EffectiveLaunchPrefix())
	}

	e.metrics.RecordTick()
	record.Entries = len(entries)
	record.Duration = time.Since(start)
	e.history.record(record)
	e.publish(entries, settings, record)
	e.logger.Tracef("%s refresh: %d windows, %d entries in %s", reason, record.Windows, record.Entries, record.Duration)
}

// loadSettings re-reads the configuration, logging a failure only when it
// differs from the previous refresh.
func (e *Engine) loadSettings() config.Settings {
	settings, err := config.LoadOrDefault(e.configPath)
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg != e.lastConfigErr {
		if msg != "" {
			e.logger.Warnf("config %s unusable, using defaults: %v", e.configPath, err)
		} else {
			e.logger.Infof("config %s loaded", e.configPath)
		}
		e.lastConfigErr = msg
	}
	e.settings = settings
	return settings
}

func (e *Engine) applyStyle() {
	css, ok := style.Load(e.stylePath)
	if ok != e.styleLoaded {
		if ok {
			e.logger.Debugf("stylesheet %s applied", e.stylePath)
		} else if e.stylePath != "" {
			e.logger.Debugf("stylesheet %s unavailable, keeping previous style", e.stylePath)
		}
		e.styleLoaded = ok
	}
	if ok {
		e.dock.ApplyStyle(css)
	}
}

func (e *Engine) fetchSnapshot(ctx context.Context) ([]state.Window, error) {
	if e.source == nil {
		return nil, nil
	}
	windows, err := e.source.ListClients(ctx)
	if err != nil {
		e.metrics.RecordFetchError()
		e.logger.Warnf("window query failed, rendering pinned entries only: %v", err)
		return nil, err
	}
	return windows, nil
}

func appWidget(entry dock.Entry, settings config.Settings, placement layout.Placement) surface.Widget {
	return surface.Widget{
		Kind:           surface.KindApp,
		Name:           surface.NameApp,
		Class:          entry.Class,
		Icon:           dock.IconFor(entry.Class, settings.OverrideAppIcons),
		IconSize:       settings.EffectiveIconSize(),
		Dots:           entry.Windows,
		Orientation:    placement.ItemOrientation,
		DotOrientation: placement.DotOrientation(),
	}
}

func (e *Engine) handleClick(ctx context.Context, click surface.Click) {
	switch click.Widget.Kind {
	case surface.KindLauncher:
		command := e.settings.AppLauncherCommand
		e.goDispatch(func() {
			_ = e.dispatcher.RunLauncher(command)
		})
	case surface.KindApp:
		class := string(click.Widget.Class)
		if click.Button == surface.ButtonMiddle {
			e.goDispatch(func() { e.dispatcher.CloseOrLaunch(ctx, class) })
			return
		}
		e.goDispatch(func() { e.dispatcher.FocusOrLaunch(ctx, class) })
	}
}

func (e *Engine) goDispatch(fn func()) {
	if e.dispatcher == nil {
		return
	}
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		fn()
	}()
}

func (e *Engine) publish(entries []dock.Entry, settings config.Settings, record TickRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = entries
	e.current = settings
	e.status = Status{
		Visibility:  e.vis.State().String(),
		AutoHide:    e.vis.AutoHide(),
		Position:    e.vis.Placement().Edge.String(),
		Entries:     len(entries),
		LastTick:    record.Timestamp,
		ConfigError: record.ConfigError,
	}
}

func (e *Engine) publishVisibility() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.Visibility = e.vis.State().String()
}

// Entries returns the entries rendered by the last refresh.
func (e *Engine) Entries() []dock.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]dock.Entry(nil), e.entries...)
}

// Status returns the dock state as of the last refresh or pointer event.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Settings returns the configuration used by the last refresh.
func (e *Engine) Settings() config.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// History returns the most recent refresh records, oldest first.
func (e *Engine) History() []TickRecord {
	return e.history.snapshot()
}

// Focus runs the primary click action for class outside the loop.
func (e *Engine) Focus(ctx context.Context, class string) dispatch.Outcome {
	return e.dispatcher.FocusOrLaunch(ctx, string(dock.Normalize(class)))
}

// Close runs the secondary click action for class outside the loop.
func (e *Engine) Close(ctx context.Context, class string) dispatch.Outcome {
	return e.dispatcher.CloseOrLaunch(ctx, string(dock.Normalize(class)))
}

// Launch runs the configured launcher command.
func (e *Engine) Launch() error {
	return e.dispatcher.RunLauncher(e.Settings().AppLauncherCommand)
}

// Metrics returns the dispatch and refresh counters.
func (e *Engine) Metrics() metrics.Snapshot {
	return e.metrics.Snapshot()
}
