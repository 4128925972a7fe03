package ipc

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const socketReplyTimeout = 2 * time.Second

type socketDispatcher struct {
	path string
}

func newSocketDispatcher() (*socketDispatcher, error) {
	path, err := instanceSocketPath(".socket.sock")
	if err != nil {
		return nil, err
	}
	return &socketDispatcher{path: path}, nil
}

// Dispatch writes a single dispatch command and reads Hyprland's reply, which
// the compositor terminates by closing the connection.
func (d *socketDispatcher) Dispatch(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", d.path)
	if err != nil {
		return "", fmt.Errorf("connect dispatch socket: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(socketReplyTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	_ = conn.SetDeadline(deadline)

	payload := strings.Join(append([]string{"dispatch"}, args...), " ")
	if _, err := conn.Write([]byte(payload)); err != nil {
		return "", fmt.Errorf("write dispatch payload: %w", err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return strings.TrimSpace(string(reply)), fmt.Errorf("read dispatch reply: %w", err)
	}
	return strings.TrimSpace(string(reply)), nil
}

func (d *socketDispatcher) DispatchSocketPath() string {
	return d.path
}

func instanceSocketPath(name string) (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE not set")
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("XDG_RUNTIME_DIR not set")
	}
	return filepath.Join(runtimeDir, "hypr", sig, name), nil
}
