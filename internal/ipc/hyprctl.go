package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/desyatkoff/hydock/internal/state"
	"github.com/desyatkoff/hydock/internal/util"
)

// NoSuchWindowReply is Hyprland's reply when a dispatch targets an address
// that no longer exists.
const NoSuchWindowReply = "No such window found"

// ErrNoSuchWindow reports that no client matched a class lookup.
var ErrNoSuchWindow = errors.New(strings.ToLower(NoSuchWindowReply))

// Client wraps hyprctl shell-outs.
type Client struct {
	Binary string
}

// NewClient returns a hyprctl client using the binary on PATH.
func NewClient() *Client {
	return &Client{Binary: "hyprctl"}
}

// run executes hyprctl and returns stdout. stdout is returned even when the
// command fails so callers can inspect Hyprland's textual reply.
func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("hyprctl %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func (c *Client) queryJSON(ctx context.Context, topic string) ([]byte, error) {
	return c.run(ctx, "-j", topic)
}

// ListClients returns all open clients.
func (c *Client) ListClients(ctx context.Context) ([]state.Window, error) {
	data, err := c.queryJSON(ctx, "clients")
	if err != nil {
		return nil, err
	}
	return decodeClients(data)
}

func decodeClients(data []byte) ([]state.Window, error) {
	var raw []struct {
		Address   string `json:"address"`
		Class     string `json:"class"`
		Title     string `json:"title"`
		PID       int    `json:"pid"`
		Workspace struct {
			ID int `json:"id"`
		} `json:"workspace"`
		FocusHistoryID *int `json:"focusHistoryID"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	windows := make([]state.Window, 0, len(raw))
	for _, cl := range raw {
		windows = append(windows, state.Window{
			Address:     cl.Address,
			Class:       cl.Class,
			Title:       cl.Title,
			WorkspaceID: cl.Workspace.ID,
			PID:         cl.PID,
			Focused:     cl.FocusHistoryID != nil && *cl.FocusHistoryID == 0,
		})
	}
	return windows, nil
}

// ClientAddress returns the address of the first client matching class, or
// ErrNoSuchWindow.
func (c *Client) ClientAddress(ctx context.Context, class string) (string, error) {
	windows, err := c.ListClients(ctx)
	if err != nil {
		return "", err
	}
	addr := state.Snapshot(windows).FirstAddress(class)
	if addr == "" {
		return "", ErrNoSuchWindow
	}
	return addr, nil
}

// Dispatch invokes `hyprctl dispatch` and returns Hyprland's trimmed reply.
func (c *Client) Dispatch(ctx context.Context, args ...string) (string, error) {
	dispatchArgs := append([]string{"dispatch"}, args...)
	out, err := c.run(ctx, dispatchArgs...)
	return strings.TrimSpace(string(out)), err
}

var _ state.DataSource = (*Client)(nil)

// DispatchStrategy describes how dispatch commands are issued to Hyprland.
type DispatchStrategy string

const (
	// DispatchStrategySocket uses the Hyprland command socket directly.
	DispatchStrategySocket DispatchStrategy = "socket"
	// DispatchStrategyHyprctl shells out to the hyprctl binary.
	DispatchStrategyHyprctl DispatchStrategy = "hyprctl"
)

type dispatcher interface {
	Dispatch(ctx context.Context, args ...string) (string, error)
}

// Hyprland combines hyprctl queries with the selected dispatch transport.
type Hyprland struct {
	*Client
	dispatcher dispatcher
}

// Dispatch forwards dispatch requests to the active transport.
func (h *Hyprland) Dispatch(ctx context.Context, args ...string) (string, error) {
	if h.dispatcher != nil {
		return h.dispatcher.Dispatch(ctx, args...)
	}
	return h.Client.Dispatch(ctx, args...)
}

// NewHyprland returns a Hyprland handle using the requested strategy when
// possible, falling back to hyprctl when the socket is unavailable.
func NewHyprland(logger *util.Logger, requested DispatchStrategy) (*Hyprland, DispatchStrategy, error) {
	base := NewClient()
	switch requested {
	case DispatchStrategySocket:
		disp, err := newSocketDispatcher()
		if err != nil {
			if logger != nil {
				logger.Warnf("falling back to hyprctl dispatch: %v", err)
			}
			return &Hyprland{Client: base}, DispatchStrategyHyprctl, nil
		}
		if logger != nil {
			logger.Debugf("using socket dispatch at %s", disp.DispatchSocketPath())
		}
		return &Hyprland{Client: base, dispatcher: disp}, DispatchStrategySocket, nil
	case DispatchStrategyHyprctl, "":
		return &Hyprland{Client: base}, DispatchStrategyHyprctl, nil
	default:
		return nil, "", fmt.Errorf("unknown dispatch strategy %q", requested)
	}
}
