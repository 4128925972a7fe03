package ipc

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/desyatkoff/hydock/internal/util"
)

// Event represents a Hyprland event stream payload.
type Event struct {
	Kind    string
	Payload string
}

// ChangesWindowSet reports whether the event opens or closes a window. Nothing
// else can change the dock entries.
func (e Event) ChangesWindowSet() bool {
	switch e.Kind {
	case "openwindow", "closewindow":
		return true
	default:
		return false
	}
}

// ParseEvent splits a raw `kind>>payload` line.
func ParseEvent(line string) Event {
	parts := strings.SplitN(line, ">>", 2)
	ev := Event{Kind: parts[0]}
	if len(parts) == 2 {
		ev.Payload = parts[1]
	}
	return ev
}

// Subscribe connects to the Hyprland event socket and streams events until context cancellation.
func Subscribe(ctx context.Context, logger *util.Logger) (<-chan Event, error) {
	socket, err := instanceSocketPath(".socket2.sock")
	if err != nil {
		return nil, err
	}
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socket)
	if err != nil {
		return nil, fmt.Errorf("connect event socket: %w", err)
	}
	events := make(chan Event)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(events)
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			select {
			case events <- ParseEvent(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			logger.Warnf("event stream error: %v", err)
		}
	}()
	return events, nil
}
