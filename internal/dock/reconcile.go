// Package dock derives the ordered list of dock entries from the live window
// snapshot and the user's pin, ignore and ordering preferences.
package dock

import (
	"sort"
	"strings"

	"github.com/desyatkoff/hydock/internal/config"
	"github.com/desyatkoff/hydock/internal/state"
)

// DefaultIcon is shown when no icon name can be derived for a class.
const DefaultIcon = "application-default-icon"

// Class identifies an application. Values produced by Normalize are always
// lower-cased; case is never significant.
type Class string

// Normalize lower-cases a window-manager class.
func Normalize(raw string) Class {
	return Class(strings.ToLower(strings.TrimSpace(raw)))
}

// Entry is one rendered unit of the dock. Windows is zero for a pinned
// application without open windows.
type Entry struct {
	Class   Class `json:"class"`
	Windows int   `json:"windows"`
}

// Reconcile merges the snapshot with the pinned and ignored lists and returns
// at most one entry per class. Ignoring always wins over pinning. Entries are
// sorted by class unless chaos mode is on, in which case they come out in Go
// map iteration order and may differ between calls.
func Reconcile(snapshot []state.Window, settings config.Settings) []Entry {
	counts := make(map[Class]int, len(snapshot)+len(settings.PinnedApplications))
	for _, w := range snapshot {
		class := Normalize(w.Class)
		if class == "" {
			continue
		}
		counts[class]++
	}
	for _, pinned := range settings.PinnedApplications {
		class := Normalize(pinned)
		if class == "" {
			continue
		}
		if _, ok := counts[class]; !ok {
			counts[class] = 0
		}
	}
	for _, ignored := range settings.IgnoreApplications {
		delete(counts, Normalize(ignored))
	}

	entries := make([]Entry, 0, len(counts))
	for class, n := range counts {
		entries = append(entries, Entry{Class: class, Windows: n})
	}
	if !settings.ChaosMode {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Class < entries[j].Class
		})
	}
	return entries
}

// IconFor returns the icon name for a class: the configured override when one
// exists, otherwise the class itself.
func IconFor(class Class, overrides map[string]string) string {
	if icon, ok := overrides[string(class)]; ok && strings.TrimSpace(icon) != "" {
		return icon
	}
	if class == "" {
		return DefaultIcon
	}
	return string(class)
}
