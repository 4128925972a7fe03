package state

import (
	"context"
	"strings"
)

// Window describes one open Hyprland client as reported by the compositor.
// Only Class is required; the other fields are kept for diagnostics and
// address resolution.
type Window struct {
	Address     string `json:"address"`
	Class       string `json:"class"`
	Title       string `json:"title,omitempty"`
	WorkspaceID int    `json:"workspace,omitempty"`
	PID         int    `json:"pid,omitempty"`
	Focused     bool   `json:"focused,omitempty"`
}

// Snapshot is the set of windows observed during a single refresh.
type Snapshot []Window

// DataSource abstracts the window query used to build a snapshot.
type DataSource interface {
	ListClients(ctx context.Context) ([]Window, error)
}

// FirstAddress returns the address of the first window whose class equals
// class. Literal matches win; otherwise the first case-insensitive match is
// used so a normalized dock class still finds its windows.
func (s Snapshot) FirstAddress(class string) string {
	for _, w := range s {
		if w.Class == class && w.Address != "" {
			return w.Address
		}
	}
	for _, w := range s {
		if strings.EqualFold(w.Class, class) && w.Address != "" {
			return w.Address
		}
	}
	return ""
}

// Classes returns the distinct literal classes in snapshot order.
func (s Snapshot) Classes() []string {
	seen := make(map[string]struct{}, len(s))
	out := make([]string, 0, len(s))
	for _, w := range s {
		if _, ok := seen[w.Class]; ok {
			continue
		}
		seen[w.Class] = struct{}{}
		out = append(out, w.Class)
	}
	return out
}

// Clone returns a copy that does not share the backing array.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	return append(Snapshot(nil), s...)
}
