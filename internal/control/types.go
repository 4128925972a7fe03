package control

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/desyatkoff/hydock/internal/dispatch"
	"github.com/desyatkoff/hydock/internal/dock"
	"github.com/desyatkoff/hydock/internal/engine"
	"github.com/desyatkoff/hydock/internal/metrics"
)

const (
	// SocketFileName is the filename of the control socket within the runtime dir.
	SocketFileName = "control.sock"

	// SocketEnv overrides the control socket location.
	SocketEnv = "HYDOCK_CONTROL_SOCKET"

	// Action names supported by the control protocol.
	ActionEntries    = "entries"
	ActionVisibility = "visibility"
	ActionFocus      = "focus"
	ActionClose      = "close"
	ActionLaunch     = "launch"
	ActionReload     = "reload"
	ActionMetrics    = "metrics"
	ActionHistory    = "history"

	// Response statuses.
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a control API request.
type Request struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Response represents a control API response.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// EntriesResult lists the entries rendered by the last refresh.
type EntriesResult struct {
	Entries []dock.Entry `json:"entries"`
}

// DispatchResult reports what a focus or close request did.
type DispatchResult struct {
	Class    string `json:"class"`
	Action   string `json:"action"`
	Result   string `json:"result"`
	Address  string `json:"address,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HistoryResult carries recent refresh records, oldest first.
type HistoryResult struct {
	Ticks []engine.TickRecord `json:"ticks"`
}

type (
	// VisibilityStatus is the dock state published after every refresh.
	VisibilityStatus = engine.Status
	// MetricsSnapshot is the serialized counter set.
	MetricsSnapshot = metrics.Snapshot
)

func dispatchResult(out dispatch.Outcome) DispatchResult {
	res := DispatchResult{
		Class:    out.Class,
		Action:   string(out.Action),
		Result:   out.Result,
		Address:  out.Address,
		Fallback: out.Fallback,
	}
	if out.Err != nil {
		res.Error = out.Err.Error()
	}
	return res
}

// DefaultSocketPath returns the expected location of the hydock control socket.
func DefaultSocketPath() (string, error) {
	if env := os.Getenv(SocketEnv); env != "" {
		return env, nil
	}
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = os.TempDir()
		if base == "" {
			return "", errors.New("no runtime directory available")
		}
	}
	return filepath.Join(base, "hydock", SocketFileName), nil
}
