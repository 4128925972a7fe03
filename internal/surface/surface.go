// Package surface defines the boundary between the dock engine and whatever
// paints it. Implementations must tolerate repeated Show, Hide and handler
// calls with the same arguments.
package surface

import (
	"github.com/desyatkoff/hydock/internal/dock"
	"github.com/desyatkoff/hydock/internal/layout"
)

// Kind discriminates dock children.
type Kind int

const (
	KindApp Kind = iota
	KindSeparator
	KindLauncher
)

func (k Kind) String() string {
	switch k {
	case KindSeparator:
		return "separator"
	case KindLauncher:
		return "launcher"
	default:
		return "app"
	}
}

// Style-sheet names of dock children.
const (
	NameApp       = "app-icon"
	NameDots      = "app-dots-box"
	NameDot       = "app-dot"
	NameSeparator = "separator"
	NameLauncher  = "app-launcher"
)

// Widget is a value description of one dock child.
type Widget struct {
	Kind        Kind
	Name        string
	Class       dock.Class
	Icon        string
	IconSize    int
	Dots        int
	Orientation layout.Orientation
	// DotOrientation is the axis of the window-count dots of an app widget.
	DotOrientation layout.Orientation
}

// Button identifies the pointer button of a click.
type Button int

const (
	ButtonPrimary   Button = 1
	ButtonMiddle    Button = 2
	ButtonSecondary Button = 3
)

// Click is a pointer press on a dock child.
type Click struct {
	Widget Widget
	Button Button
}

// Hover is a pointer crossing event on a surface.
type Hover int

const (
	PointerEnter Hover = iota
	PointerLeave
)

func (h Hover) String() string {
	if h == PointerLeave {
		return "leave"
	}
	return "enter"
}

// HoverHandler receives crossing events. A nil handler detaches listening.
type HoverHandler func(Hover)

// ClickHandler receives presses on dock children.
type ClickHandler func(Click)

// Surface is a layer-shell style window anchored to a screen edge.
type Surface interface {
	SetAnchor(edge layout.Edge)
	SetExclusiveZone(enabled bool)
	SetOrientation(o layout.Orientation)
	SetSize(width, height int)
	ApplyStyle(css string)
	Append(w Widget)
	RemoveAll()
	Show()
	Hide()
	Visible() bool
	SetHoverHandler(h HoverHandler)
	SetClickHandler(h ClickHandler)
}

// Replacer is implemented by surfaces that can swap their whole child list
// under one lock, so a concurrent painter never sees a partial dock.
type Replacer interface {
	Replace(children []Widget)
}

// Rebuild replaces the children of s. Surfaces implementing Replacer are
// updated in one step; others are cleared and appended to one by one.
func Rebuild(s Surface, children []Widget) {
	if r, ok := s.(Replacer); ok {
		r.Replace(children)
		return
	}
	s.RemoveAll()
	for _, w := range children {
		s.Append(w)
	}
}
