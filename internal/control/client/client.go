package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/desyatkoff/hydock/internal/control"
	"github.com/desyatkoff/hydock/internal/dock"
)

const (
	// defaultTimeout is used when the caller does not provide a context deadline.
	defaultTimeout = 3 * time.Second
)

// Client talks to the running hydock dock over its control socket.
type Client struct {
	socketPath string
}

type (
	// Entry is one rendered dock entry.
	Entry = dock.Entry
	// VisibilityStatus mirrors the dock state payload.
	VisibilityStatus = control.VisibilityStatus
	// DispatchResult reports the outcome of a focus or close request.
	DispatchResult = control.DispatchResult
	// MetricsSnapshot mirrors the counter payload.
	MetricsSnapshot = control.MetricsSnapshot
	// HistoryResult carries recent refresh records.
	HistoryResult = control.HistoryResult
)

// New creates a client that connects to the provided socket path. When path is
// empty, the default runtime path is used.
func New(path string) (*Client, error) {
	if path == "" {
		var err error
		path, err = control.DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return &Client{socketPath: path}, nil
}

// Entries retrieves the entries rendered by the dock's last refresh.
func (c *Client) Entries(ctx context.Context) ([]Entry, error) {
	var result control.EntriesResult
	if err := c.do(ctx, control.Request{Action: control.ActionEntries}, &result); err != nil {
		return nil, err
	}
	return result.Entries, nil
}

// Visibility retrieves the dock's visibility and placement.
func (c *Client) Visibility(ctx context.Context) (VisibilityStatus, error) {
	var status VisibilityStatus
	if err := c.do(ctx, control.Request{Action: control.ActionVisibility}, &status); err != nil {
		return VisibilityStatus{}, err
	}
	return status, nil
}

// Focus focuses the first window of class, launching it when none exists.
func (c *Client) Focus(ctx context.Context, class string) (DispatchResult, error) {
	return c.dispatch(ctx, control.ActionFocus, class)
}

// Close closes the first window of class, launching it when none exists.
func (c *Client) Close(ctx context.Context, class string) (DispatchResult, error) {
	return c.dispatch(ctx, control.ActionClose, class)
}

func (c *Client) dispatch(ctx context.Context, action, class string) (DispatchResult, error) {
	if strings.TrimSpace(class) == "" {
		return DispatchResult{}, errors.New("application class cannot be empty")
	}
	var result DispatchResult
	req := control.Request{Action: action, Params: map[string]any{"class": class}}
	if err := c.do(ctx, req, &result); err != nil {
		return DispatchResult{}, err
	}
	return result, nil
}

// Launch runs the configured application launcher.
func (c *Client) Launch(ctx context.Context) error {
	return c.do(ctx, control.Request{Action: control.ActionLaunch}, nil)
}

// Reload asks the dock to refresh immediately.
func (c *Client) Reload(ctx context.Context) error {
	return c.do(ctx, control.Request{Action: control.ActionReload}, nil)
}

// Metrics retrieves the dock's refresh and dispatch counters.
func (c *Client) Metrics(ctx context.Context) (MetricsSnapshot, error) {
	var snap MetricsSnapshot
	if err := c.do(ctx, control.Request{Action: control.ActionMetrics}, &snap); err != nil {
		return MetricsSnapshot{}, err
	}
	return snap, nil
}

// History retrieves recent refresh records.
func (c *Client) History(ctx context.Context) (HistoryResult, error) {
	var result HistoryResult
	if err := c.do(ctx, control.Request{Action: control.ActionHistory}, &result); err != nil {
		return HistoryResult{}, err
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, req control.Request, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("dial control socket: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	var resp control.Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.Status != control.StatusOK {
		if resp.Error == "" {
			resp.Error = "unknown control error"
		}
		return errors.New(resp.Error)
	}
	if out == nil || resp.Data == nil {
		return nil
	}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
