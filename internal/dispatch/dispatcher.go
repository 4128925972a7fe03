// Package dispatch runs user-triggered window commands using the
// primary-action-with-launch-fallback protocol: try the window-manager
// action and launch the application only when Hyprland reports that no
// matching window exists.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desyatkoff/hydock/internal/config"
	"github.com/desyatkoff/hydock/internal/ipc"
	"github.com/desyatkoff/hydock/internal/metrics"
	"github.com/desyatkoff/hydock/internal/util"
)

// WindowManager resolves client addresses and runs dispatchers.
type WindowManager interface {
	ClientAddress(ctx context.Context, class string) (string, error)
	Dispatch(ctx context.Context, args ...string) (string, error)
}

// Spawner starts a detached process and reaps it without blocking.
type Spawner interface {
	Spawn(name string, args ...string) error
}

// Action is the Hyprland dispatcher used as the primary action.
type Action string

const (
	ActionFocus Action = "focuswindow"
	ActionClose Action = "closewindow"
)

// Outcome describes what a dispatch request ended up doing.
type Outcome struct {
	Class    string `json:"class"`
	Action   Action `json:"action"`
	Result   string `json:"result"`
	Address  string `json:"address,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Err      error  `json:"-"`
}

func (o Outcome) String() string {
	s := fmt.Sprintf("%s %s: %s", o.Action, o.Class, o.Result)
	if o.Address != "" {
		s += " (" + o.Address + ")"
	}
	if o.Err != nil {
		s += ": " + o.Err.Error()
	}
	return s
}

// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	wm      WindowManager
	spawner Spawner
	logger  *util.Logger
	metrics *metrics.Collector

	mu           sync.RWMutex
	launchPrefix string
}

// New returns a dispatcher launching applications from config.DefaultLaunchPrefix.
func New(wm WindowManager, spawner Spawner, logger *util.Logger, collector *metrics.Collector) *Dispatcher {
	return &Dispatcher{
		wm:           wm,
		spawner:      spawner,
		logger:       logger,
		metrics:      collector,
		launchPrefix: config.DefaultLaunchPrefix,
	}
}

// SetLaunchPrefix changes the directory application binaries are launched from.
func (d *Dispatcher) SetLaunchPrefix(prefix string) {
	if strings.TrimSpace(prefix) == "" {
		prefix = config.DefaultLaunchPrefix
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.launchPrefix = prefix
}

// LaunchPath returns the binary launched for class.
func (d *Dispatcher) LaunchPath(class string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return filepath.Join(d.launchPrefix, class)
}

// FocusOrLaunch focuses the first window of class, launching the application
// when no such window exists.
func (d *Dispatcher) FocusOrLaunch(ctx context.Context, class string) Outcome {
	return d.primaryOrLaunch(ctx, ActionFocus, class)
}

// CloseOrLaunch closes the first window of class, launching the application
// when no such window exists.
func (d *Dispatcher) CloseOrLaunch(ctx context.Context, class string) Outcome {
	return d.primaryOrLaunch(ctx, ActionClose, class)
}

func (d *Dispatcher) primaryOrLaunch(ctx context.Context, action Action, class string) Outcome {
	out := Outcome{Class: class, Action: action}

	addr, err := d.wm.ClientAddress(ctx, class)
	if err != nil && !errors.Is(err, ipc.ErrNoSuchWindow) {
		d.logger.Warnf("address lookup for %s failed: %v", class, err)
	}
	addr = strings.TrimSpace(addr)
	if addr == "" || addr == "null" {
		return d.finish(d.launch(out))
	}
	out.Address = addr

	reply, err := d.wm.Dispatch(ctx, string(action), "address:"+addr)
	if reply == ipc.NoSuchWindowReply {
		d.logger.Debugf("%s vanished before %s, launching instead", addr, action)
		return d.finish(d.launch(out))
	}
	if err != nil {
		out.Result = metrics.ResultFailed
		out.Err = err
		return d.finish(out)
	}
	if action == ActionClose {
		out.Result = metrics.ResultClosed
	} else {
		out.Result = metrics.ResultFocused
	}
	return d.finish(out)
}

func (d *Dispatcher) launch(out Outcome) Outcome {
	out.Fallback = true
	if out.Class == "" || strings.ContainsRune(out.Class, '/') || out.Class == "." || out.Class == ".." {
		out.Result = metrics.ResultFailed
		out.Err = fmt.Errorf("refusing to launch class %q", out.Class)
		return out
	}
	path := d.LaunchPath(out.Class)
	if err := d.spawner.Spawn(path); err != nil {
		out.Result = metrics.ResultFailed
		out.Err = err
		return out
	}
	out.Result = metrics.ResultLaunched
	return out
}

func (d *Dispatcher) finish(out Outcome) Outcome {
	d.metrics.RecordDispatch(out.Class, out.Result, out.Fallback)
	if out.Err != nil {
		d.logger.Errorf("%s", out)
		return out
	}
	d.logger.Infof("%s", out)
	return out
}

// RunLauncher runs the configured launcher command through the shell. Spawn
// failures are logged and returned but never retried.
func (d *Dispatcher) RunLauncher(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		err := errors.New("launcher command is empty")
		d.logger.Warnf("run launcher: %v", err)
		return err
	}
	if err := d.spawner.Spawn("sh", "-c", command); err != nil {
		d.logger.Errorf("run launcher %q: %v", command, err)
		return err
	}
	d.metrics.RecordLauncher()
	d.logger.Infof("launcher started: %s", command)
	return nil
}
