package engine

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/desyatkoff/hydock/internal/dispatch"
	"github.com/desyatkoff/hydock/internal/dock"
	"github.com/desyatkoff/hydock/internal/ipc"
	"github.com/desyatkoff/hydock/internal/layout"
	"github.com/desyatkoff/hydock/internal/metrics"
	"github.com/desyatkoff/hydock/internal/state"
	"github.com/desyatkoff/hydock/internal/surface"
	termui "github.com/desyatkoff/hydock/internal/ui/term"
	"github.com/desyatkoff/hydock/internal/util"
)

type fakeSource struct {
	mu      sync.Mutex
	windows []state.Window
	err     error
	calls   int
	// gate, when set, holds every query until it is closed.
	gate chan struct{}
}

func (f *fakeSource) ListClients(context.Context) ([]state.Window, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]state.Window(nil), f.windows...), nil
}

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeWM struct {
	mu         sync.Mutex
	addresses  map[string]string
	dispatched [][]string
}

func (f *fakeWM) ClientAddress(_ context.Context, class string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if addr, ok := f.addresses[class]; ok {
		return addr, nil
	}
	return "", ipc.ErrNoSuchWindow
}

func (f *fakeWM) Dispatch(_ context.Context, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, append([]string(nil), args...))
	return "ok", nil
}

func (f *fakeWM) Dispatched() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.dispatched...)
}

type fakeSpawner struct {
	mu      sync.Mutex
	spawned [][]string
}

func (f *fakeSpawner) Spawn(name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spawned = append(f.spawned, append([]string{name}, args...))
	return nil
}

func (f *fakeSpawner) Spawned() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.spawned...)
}

type manualTicker struct {
	ch chan time.Time
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time, 1)}
}

func (t *manualTicker) C() <-chan time.Time {
	return t.ch
}

func (t *manualTicker) Stop() {}

func (t *manualTicker) Tick() {
	t.ch <- time.Now()
}

type harness struct {
	engine  *Engine
	source  *fakeSource
	wm      *fakeWM
	spawner *fakeSpawner
	dock    *surface.Recorder
	trigger *surface.Recorder
	ticker  *manualTicker
	logs    *syncWriter
	metrics *metrics.Collector
	dir     string
}

func newHarness(t *testing.T, configText string, windows ...state.Window) *harness {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	if configText != "" {
		writeFile(t, configPath, configText)
	}
	h := &harness{
		source:  &fakeSource{windows: windows},
		wm:      &fakeWM{addresses: map[string]string{}},
		spawner: &fakeSpawner{},
		dock:    surface.NewRecorder("dock"),
		trigger: surface.NewRecorder("trigger"),
		ticker:  newManualTicker(),
		logs:    &syncWriter{buf: &bytes.Buffer{}},
		metrics: metrics.NewCollector(),
		dir:     dir,
	}
	logger := util.NewLoggerWithWriter(util.LevelDebug, h.logs)
	d := dispatch.New(h.wm, h.spawner, logger, h.metrics)
	h.engine = New(h.source, d, h.dock, h.trigger, logger, h.metrics, Options{
		ConfigPath: configPath,
		StylePath:  filepath.Join(dir, "style.css"),
	})
	h.engine.tickerFactory = func() ticker { return h.ticker }
	h.engine.subscribe = nil
	return h
}

func (h *harness) run(t *testing.T) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.engine.Run(ctx)
	}()
	waitForCondition(t, time.Second, func() bool {
		return h.source.Calls() > 0
	})
	t.Cleanup(func() {
		cancel()
		h.engine.Wait()
	})
	return cancel, errCh
}

type syncWriter struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func waitForCondition(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

const pinIgnoreConfig = `[config]
pinned_applications = ["discord"]
ignore_applications = ["kitty"]
`

func TestRefreshRendersEntriesSeparatorAndLauncher(t *testing.T) {
	h := newHarness(t, pinIgnoreConfig,
		state.Window{Address: "0x1", Class: "Firefox"},
		state.Window{Address: "0x2", Class: "firefox"},
		state.Window{Address: "0x3", Class: "Kitty"},
	)
	h.engine.Refresh(context.Background())

	want := []surface.Widget{
		{Kind: surface.KindApp, Name: surface.NameApp, Class: "discord", Icon: "discord", IconSize: 32, Dots: 0, Orientation: layout.Vertical, DotOrientation: layout.Horizontal},
		{Kind: surface.KindApp, Name: surface.NameApp, Class: "firefox", Icon: "firefox", IconSize: 32, Dots: 2, Orientation: layout.Vertical, DotOrientation: layout.Horizontal},
		{Kind: surface.KindSeparator, Name: surface.NameSeparator, Orientation: layout.Vertical},
		{Kind: surface.KindLauncher, Name: surface.NameLauncher, Icon: "applications-all-symbolic", IconSize: 32, Orientation: layout.Vertical},
	}
	if diff := cmp.Diff(want, h.dock.Children()); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
	wantEntries := []dock.Entry{{Class: "discord", Windows: 0}, {Class: "firefox", Windows: 2}}
	if diff := cmp.Diff(wantEntries, h.engine.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	status := h.engine.Status()
	if status.Visibility != "shown" || status.Position != "bottom" || status.Entries != 2 {
		t.Fatalf("unexpected status %+v", status)
	}
	if !h.dock.Visible() || h.trigger.Visible() {
		t.Fatalf("dock should be visible and trigger hidden with auto-hide off")
	}
	if !h.dock.ExclusiveZone() || h.trigger.ExclusiveZone() {
		t.Fatalf("only the dock should reserve an exclusive zone")
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	h := newHarness(t, pinIgnoreConfig, state.Window{Class: "Alacritty"}, state.Window{Class: "code"})
	h.engine.Refresh(context.Background())
	first := h.dock.Children()
	h.engine.Refresh(context.Background())
	second := h.dock.Children()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("rebuild changed children (-first +second):\n%s", diff)
	}
	if got := h.dock.Clears(); got != 2 {
		t.Fatalf("expected one clear per refresh, got %d", got)
	}
	if got := h.metrics.Snapshot().Ticks; got != 2 {
		t.Fatalf("expected 2 ticks recorded, got %d", got)
	}
}

func TestRefreshHidesLauncherAndSeparator(t *testing.T) {
	h := newHarness(t, "[config]\nshow_app_launcher = false\n", state.Window{Class: "foot"})
	h.engine.Refresh(context.Background())
	children := h.dock.Children()
	if len(children) != 1 || children[0].Class != "foot" {
		t.Fatalf("expected only the foot entry, got %+v", children)
	}

	writeFile(t, h.engine.configPath, "[config]\nshow_separator = false\n")
	h.engine.Refresh(context.Background())
	children = h.dock.Children()
	if len(children) != 2 || children[1].Kind != surface.KindLauncher {
		t.Fatalf("expected entry and launcher without separator, got %+v", children)
	}
}

func TestFetchFailureRendersPinnedOnly(t *testing.T) {
	h := newHarness(t, pinIgnoreConfig)
	h.source.err = errors.New("hyprctl: exit status 1")

	h.engine.Refresh(context.Background())

	want := []dock.Entry{{Class: "discord", Windows: 0}}
	if diff := cmp.Diff(want, h.engine.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if got := h.metrics.Snapshot().FetchErrors; got != 1 {
		t.Fatalf("expected fetch error to be counted, got %d", got)
	}
	if !strings.Contains(h.logs.String(), "window query failed") {
		t.Fatalf("expected warning, got %q", h.logs.String())
	}
	history := h.engine.History()
	if len(history) != 1 || history[0].FetchError == "" {
		t.Fatalf("expected fetch error in history, got %+v", history)
	}
}

func TestMalformedConfigUsesDefaultsAndLogsOnce(t *testing.T) {
	h := newHarness(t, "[config\nauto_hide = ", state.Window{Class: "foot"})
	for i := 0; i < 3; i++ {
		h.engine.Refresh(context.Background())
	}
	if got := strings.Count(h.logs.String(), "unusable, using defaults"); got != 1 {
		t.Fatalf("expected a single config warning, got %d in %q", got, h.logs.String())
	}
	if got := len(h.dock.Children()); got != 3 {
		t.Fatalf("expected default rendering with launcher and separator, got %d children", got)
	}
	if h.engine.Status().ConfigError == "" {
		t.Fatalf("expected config error in status")
	}

	writeFile(t, h.engine.configPath, "[config]\nchaos_mode = false\n")
	h.engine.Refresh(context.Background())
	if h.engine.Status().ConfigError != "" {
		t.Fatalf("config error should clear once the file parses")
	}
}

func TestPositionChangeReanchorsSurfaces(t *testing.T) {
	h := newHarness(t, "[config]\ndock_position = \"left\"\n")
	h.engine.Refresh(context.Background())

	if h.dock.Anchor() != layout.EdgeLeft || h.trigger.Anchor() != layout.EdgeLeft {
		t.Fatalf("expected both surfaces anchored left")
	}
	if h.dock.Orientation() != layout.Vertical {
		t.Fatalf("expected vertical dock")
	}
	w, hgt := h.trigger.Size()
	if w != 1 || hgt != math.MaxInt32 {
		t.Fatalf("unexpected trigger size %dx%d", w, hgt)
	}

	writeFile(t, h.engine.configPath, "[config]\ndock_position = \"diagonal\"\n")
	h.engine.Refresh(context.Background())
	if h.dock.Anchor() != layout.EdgeBottom || h.dock.Orientation() != layout.Horizontal {
		t.Fatalf("invalid position should fall back to bottom")
	}
}

func TestStylesheetApplied(t *testing.T) {
	h := newHarness(t, "")
	css := "#app-dot { background: white; }"
	writeFile(t, h.engine.stylePath, css)
	h.engine.Refresh(context.Background())
	if got := h.dock.Style(); got != css {
		t.Fatalf("style = %q, want %q", got, css)
	}

	if err := os.Remove(h.engine.stylePath); err != nil {
		t.Fatalf("remove: %v", err)
	}
	h.engine.Refresh(context.Background())
	if got := h.dock.Style(); got != css {
		t.Fatalf("missing stylesheet should keep the previous style, got %q", got)
	}
}

func TestIconOverrides(t *testing.T) {
	h := newHarness(t, "[config]\n[config.override_app_icons]\nCode = \"visual-studio-code\"\n", state.Window{Class: "code"})
	h.engine.Refresh(context.Background())
	children := h.dock.Children()
	if children[0].Icon != "visual-studio-code" {
		t.Fatalf("expected override icon, got %q", children[0].Icon)
	}
}

func TestRunTriggersPeriodicRefresh(t *testing.T) {
	h := newHarness(t, "")
	cancel, errCh := h.run(t)

	initial := h.source.Calls()
	h.ticker.Tick()
	waitForCondition(t, time.Second, func() bool {
		return h.source.Calls() > initial
	})

	cancel()
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Fatalf("expected context canceled error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("engine Run did not exit after cancel")
	}
}

func TestRequestRefreshCoalesces(t *testing.T) {
	h := newHarness(t, "")
	h.run(t)

	initial := h.source.Calls()
	h.engine.RequestRefresh()
	h.engine.RequestRefresh()
	waitForCondition(t, time.Second, func() bool {
		return h.source.Calls() > initial
	})
}

func TestAutoHideFollowsPointer(t *testing.T) {
	h := newHarness(t, "[config]\nauto_hide = true\n")
	h.run(t)

	waitForCondition(t, time.Second, func() bool {
		return h.engine.Status().AutoHide
	})
	if !h.trigger.Visible() || !h.trigger.Listening() || !h.dock.Listening() {
		t.Fatalf("trigger should be shown and both surfaces listening")
	}

	if !h.dock.Hover(surface.PointerLeave) {
		t.Fatalf("dock hover handler not attached")
	}
	waitForCondition(t, time.Second, func() bool {
		return h.engine.Status().Visibility == "hidden"
	})
	if h.dock.Visible() {
		t.Fatalf("dock should be hidden after the pointer leaves")
	}

	h.trigger.Hover(surface.PointerEnter)
	waitForCondition(t, time.Second, func() bool {
		return h.engine.Status().Visibility == "shown"
	})
	if !h.dock.Visible() {
		t.Fatalf("dock should be visible after entering the trigger")
	}
}

func TestAutoHideOffIgnoresPointer(t *testing.T) {
	h := newHarness(t, "")
	h.run(t)
	if h.dock.Hover(surface.PointerLeave) {
		t.Fatalf("no hover handler should be attached with auto-hide off")
	}
	if !h.dock.Visible() || h.trigger.Visible() {
		t.Fatalf("dock must stay visible with auto-hide off")
	}
}

func TestClicksDispatchOffLoop(t *testing.T) {
	h := newHarness(t, pinIgnoreConfig, state.Window{Address: "0xf1", Class: "firefox"})
	h.wm.addresses["firefox"] = "0xf1"
	h.run(t)
	waitForCondition(t, time.Second, func() bool {
		return len(h.dock.Children()) == 4
	})

	// discord is pinned without windows: any primary click launches it.
	h.dock.Press(0, surface.ButtonPrimary)
	// middle click closes firefox.
	h.dock.Press(1, surface.ButtonMiddle)
	// launcher
	h.dock.Press(3, surface.ButtonPrimary)
	// separator is inert
	h.dock.Press(2, surface.ButtonPrimary)

	waitForCondition(t, time.Second, func() bool {
		return len(h.spawner.Spawned()) == 2 && len(h.wm.Dispatched()) == 1
	})
	h.engine.Wait()

	spawned := h.spawner.Spawned()
	want := map[string]bool{"/usr/bin/discord": false, "sh -c rofi -show drun": false}
	for _, argv := range spawned {
		key := argv[0]
		if len(argv) > 1 {
			key = argv[0] + " " + argv[1] + " " + argv[2]
		}
		if _, ok := want[key]; !ok {
			t.Fatalf("unexpected spawn %v", argv)
		}
		want[key] = true
	}
	for key, seen := range want {
		if !seen {
			t.Fatalf("expected spawn of %q", key)
		}
	}
	if diff := cmp.Diff([][]string{{"closewindow", "address:0xf1"}}, h.wm.Dispatched()); diff != "" {
		t.Fatalf("dispatched mismatch (-want +got):\n%s", diff)
	}
}

func TestEventsRequestRefreshWhenEnabled(t *testing.T) {
	h := newHarness(t, "[config]\nrefresh_on_events = true\n")
	events := make(chan ipc.Event, 4)
	h.engine.subscribe = func(context.Context, *util.Logger) (<-chan ipc.Event, error) {
		return events, nil
	}
	h.run(t)

	initial := h.source.Calls()
	events <- ipc.Event{Kind: "openwindow", Payload: "0x1,2,foot,foot"}
	waitForCondition(t, time.Second, func() bool {
		return h.source.Calls() > initial
	})

	close(events)
	waitForCondition(t, time.Second, func() bool {
		return strings.Contains(h.logs.String(), "event stream closed")
	})
	before := h.source.Calls()
	h.ticker.Tick()
	waitForCondition(t, time.Second, func() bool {
		return h.source.Calls() > before
	})
}

func TestEventBurstCoalescesIntoOneRefresh(t *testing.T) {
	h := newHarness(t, "[config]\nrefresh_on_events = true\n")
	events := make(chan ipc.Event, 8)
	h.engine.subscribe = func(context.Context, *util.Logger) (<-chan ipc.Event, error) {
		return events, nil
	}
	h.run(t)
	waitForCondition(t, time.Second, func() bool {
		return len(h.engine.History()) == 1
	})

	gate := make(chan struct{})
	h.source.mu.Lock()
	h.source.gate = gate
	h.source.mu.Unlock()

	initial := h.source.Calls()
	events <- ipc.Event{Kind: "openwindow", Payload: "0x1,1,foot,foot"}
	waitForCondition(t, time.Second, func() bool {
		return h.source.Calls() == initial+1
	})
	events <- ipc.Event{Kind: "openwindow", Payload: "0x2,1,foot,foot"}
	events <- ipc.Event{Kind: "windowtitlev2", Payload: "0x2,vim"}
	events <- ipc.Event{Kind: "closewindow", Payload: "0x1"}
	close(gate)

	waitForCondition(t, time.Second, func() bool {
		return countReason(h.engine.History(), ReasonEvent) == 2
	})
	time.Sleep(50 * time.Millisecond)
	if got := countReason(h.engine.History(), ReasonEvent); got != 2 {
		t.Fatalf("expected queued events to share one refresh, got %d event refreshes", got)
	}
}

func TestTitleChangesDoNotRefresh(t *testing.T) {
	h := newHarness(t, "[config]\nrefresh_on_events = true\n")
	events := make(chan ipc.Event, 4)
	h.engine.subscribe = func(context.Context, *util.Logger) (<-chan ipc.Event, error) {
		return events, nil
	}
	h.run(t)
	waitForCondition(t, time.Second, func() bool {
		return len(h.engine.History()) == 1
	})

	events <- ipc.Event{Kind: "windowtitlev2", Payload: "0x1,new title"}
	events <- ipc.Event{Kind: "activewindow", Payload: "foot,foot"}
	h.ticker.Tick()
	waitForCondition(t, time.Second, func() bool {
		return countReason(h.engine.History(), ReasonPeriodic) == 1
	})
	if got := countReason(h.engine.History(), ReasonEvent); got != 0 {
		t.Fatalf("expected no event refreshes, got %d", got)
	}
}

func countReason(records []TickRecord, reason TickReason) int {
	n := 0
	for _, r := range records {
		if r.Reason == reason {
			n++
		}
	}
	return n
}

func TestRefreshNeverPaintsPartialDock(t *testing.T) {
	dir := t.TempDir()
	source := &fakeSource{windows: []state.Window{
		{Address: "0x1", Class: "firefox"},
		{Address: "0x2", Class: "kitty"},
	}}
	logger := util.Discard()
	collector := metrics.NewCollector()
	dockSurface := termui.NewSurface()
	e := New(source, dispatch.New(&fakeWM{addresses: map[string]string{}}, &fakeSpawner{}, logger, collector),
		dockSurface, surface.NewRecorder("trigger"), logger, collector, Options{
			ConfigPath: filepath.Join(dir, "config.toml"),
			StylePath:  filepath.Join(dir, "style.css"),
		})
	e.subscribe = nil

	complete := func(frame string) bool {
		return strings.Contains(frame, "firefox") && strings.Contains(frame, "kitty") && strings.Contains(frame, "application")
	}
	e.Refresh(context.Background())
	if frame := dockSurface.Frame(0); !complete(frame) {
		t.Fatalf("first refresh rendered %q", frame)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				e.Refresh(context.Background())
			}
		}
	}()
	torn := 0
	for i := 0; i < 2000; i++ {
		if !complete(dockSurface.Frame(0)) {
			torn++
		}
	}
	close(stop)
	<-done
	if torn != 0 {
		t.Fatalf("%d of 2000 frames showed a partially rebuilt dock", torn)
	}
}

func TestEngineFocusNormalizesClass(t *testing.T) {
	h := newHarness(t, "")
	h.wm.addresses["firefox"] = "0xf1"
	out := h.engine.Focus(context.Background(), "  Firefox ")
	if out.Result != metrics.ResultFocused || out.Address != "0xf1" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if err := h.engine.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if diff := cmp.Diff([][]string{{"sh", "-c", "rofi -show drun"}}, h.spawner.Spawned()); diff != "" {
		t.Fatalf("spawned mismatch (-want +got):\n%s", diff)
	}
}
