// Package term paints dock surfaces as text so the dock can be previewed in a
// terminal without a compositor.
package term

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/desyatkoff/hydock/internal/layout"
	"github.com/desyatkoff/hydock/internal/surface"
)

const (
	maxLabelWidth = 12
	dotGlyph      = "●"
)

var (
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
	launcherStyle = cellStyle.
			BorderForeground(lipgloss.Color("42"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	pinnedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	dotStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	hiddenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// Surface is a surface.Surface that keeps its state in memory and renders it
// on demand with Frame. Pointer events are never produced; handlers are only
// stored.
type Surface struct {
	mu          sync.Mutex
	anchor      layout.Edge
	orientation layout.Orientation
	exclusive   bool
	width       int
	height      int
	css         string
	visible     bool
	children    []surface.Widget
	hover       surface.HoverHandler
	click       surface.ClickHandler
}

// NewSurface returns a hidden, bottom-anchored surface.
func NewSurface() *Surface {
	return &Surface{}
}

func (s *Surface) SetAnchor(edge layout.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchor = edge
}

func (s *Surface) SetExclusiveZone(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exclusive = enabled
}

func (s *Surface) SetOrientation(o layout.Orientation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orientation = o
}

func (s *Surface) SetSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
}

// ApplyStyle stores the stylesheet. Terminal output uses a fixed palette.
func (s *Surface) ApplyStyle(css string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.css = css
}

func (s *Surface) Append(w surface.Widget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = append(s.children, w)
}

func (s *Surface) RemoveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = nil
}

// Replace swaps the whole child list at once.
func (s *Surface) Replace(children []surface.Widget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children = append([]surface.Widget(nil), children...)
}

func (s *Surface) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = true
}

func (s *Surface) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
}

func (s *Surface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Surface) SetHoverHandler(h surface.HoverHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hover = h
}

func (s *Surface) SetClickHandler(h surface.ClickHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.click = h
}

// Frame renders the surface for a terminal of the given width. A width of zero
// or less disables edge alignment.
func (s *Surface) Frame(width int) string {
	s.mu.Lock()
	children := append([]surface.Widget(nil), s.children...)
	anchor := s.anchor
	orientation := s.orientation
	visible := s.visible
	s.mu.Unlock()

	if !visible {
		return hiddenStyle.Render("dock hidden, hover the " + anchor.String() + " edge to reveal")
	}
	if len(children) == 0 {
		return hiddenStyle.Render("(empty dock)")
	}

	cells := make([]string, 0, len(children))
	for _, w := range children {
		cells = append(cells, renderWidget(w, orientation))
	}
	var body string
	if orientation == layout.Vertical {
		body = lipgloss.JoinVertical(lipgloss.Center, cells...)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Center, cells...)
	}
	if width <= 0 {
		return body
	}
	switch anchor {
	case layout.EdgeLeft:
		return lipgloss.PlaceHorizontal(width, lipgloss.Left, body)
	case layout.EdgeRight:
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, body)
	default:
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, body)
	}
}

func renderWidget(w surface.Widget, dockOrientation layout.Orientation) string {
	switch w.Kind {
	case surface.KindSeparator:
		if dockOrientation == layout.Vertical {
			return separatorStyle.Render(strings.Repeat("─", maxLabelWidth))
		}
		return separatorStyle.Render("│\n│\n│")
	case surface.KindLauncher:
		return launcherStyle.Render(labelStyle.Render(truncate(w.Icon)))
	}

	label := labelStyle.Render(truncate(w.Icon))
	if w.Dots == 0 {
		label = pinnedStyle.Render(truncate(w.Icon))
	}
	dots := dotStyle.Render(dotRow(w.Dots, w.DotOrientation))
	var content string
	if w.Orientation == layout.Horizontal {
		content = lipgloss.JoinHorizontal(lipgloss.Center, label, " ", dots)
	} else {
		content = lipgloss.JoinVertical(lipgloss.Center, label, dots)
	}
	return cellStyle.Render(content)
}

func dotRow(n int, o layout.Orientation) string {
	if n <= 0 {
		return " "
	}
	dots := make([]string, n)
	for i := range dots {
		dots[i] = dotGlyph
	}
	if o == layout.Vertical {
		return strings.Join(dots, "\n")
	}
	return strings.Join(dots, " ")
}

func truncate(label string) string {
	r := []rune(label)
	if len(r) <= maxLabelWidth {
		return label
	}
	return string(r[:maxLabelWidth-1]) + "…"
}

var _ surface.Surface = (*Surface)(nil)
var _ surface.Replacer = (*Surface)(nil)
