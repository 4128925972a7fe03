// Package style loads the user's dock stylesheet.
package style

import (
	"os"
	"strings"
)

// Load returns the stylesheet at path. ok is false when the file is missing,
// unreadable or blank; callers then leave the current style untouched.
func Load(path string) (css string, ok bool) {
	if path == "" {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	css = string(data)
	if strings.TrimSpace(css) == "" {
		return "", false
	}
	return css, true
}

// Names lists the selectors a stylesheet can target, in dock order.
func Names() []string {
	return []string{"dock", "app-icon", "app-dots-box", "app-dot", "separator", "app-launcher"}
}
