package layout

import (
	"math"
	"strings"
)

// Edge is the screen edge a dock surface is anchored to.
type Edge int

const (
	EdgeBottom Edge = iota
	EdgeTop
	EdgeLeft
	EdgeRight
)

var edgeNames = map[string]Edge{
	"bottom": EdgeBottom,
	"top":    EdgeTop,
	"left":   EdgeLeft,
	"right":  EdgeRight,
}

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	default:
		return "bottom"
	}
}

// LookupEdge resolves a dock position name. ok is false for unknown names.
func LookupEdge(name string) (edge Edge, ok bool) {
	edge, ok = edgeNames[strings.ToLower(strings.TrimSpace(name))]
	return edge, ok
}

// ParseEdge resolves a dock position name, falling back to the bottom edge.
func ParseEdge(name string) Edge {
	if edge, ok := LookupEdge(name); ok {
		return edge
	}
	return EdgeBottom
}

// Orientation is the axis along which a box lays out its children.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Perpendicular returns the other axis.
func (o Orientation) Perpendicular() Orientation {
	if o == Vertical {
		return Horizontal
	}
	return Vertical
}

// TriggerThickness is the depth in pixels of the hover strip that re-summons a
// hidden dock.
const TriggerThickness = 1

// Placement captures where the dock sits and how its content flows.
//
// Entries flow along Orientation. Inside one entry the icon and its dot row
// stack along ItemOrientation, while the dots themselves flow along
// Orientation again so they line up with the dock.
type Placement struct {
	Edge            Edge
	Orientation     Orientation
	ItemOrientation Orientation
}

// PlacementFor computes the placement for a configured dock position.
func PlacementFor(position string) Placement {
	edge := ParseEdge(position)
	orientation := Horizontal
	if edge == EdgeLeft || edge == EdgeRight {
		orientation = Vertical
	}
	return Placement{
		Edge:            edge,
		Orientation:     orientation,
		ItemOrientation: orientation.Perpendicular(),
	}
}

// DotOrientation is the axis along which window-count dots are laid out.
func (p Placement) DotOrientation() Orientation {
	return p.Orientation
}

// SeparatorOrientation is the axis of the separator line between the
// application entries and the launcher.
func (p Placement) SeparatorOrientation() Orientation {
	return p.Orientation.Perpendicular()
}

// TriggerSize returns the requested size of the hover strip: the full length
// of the anchored edge and TriggerThickness deep.
func (p Placement) TriggerSize() (width, height int) {
	if p.Orientation == Vertical {
		return TriggerThickness, math.MaxInt32
	}
	return math.MaxInt32, TriggerThickness
}

// Rect is an area of a monitor in logical pixels.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether the point falls inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// TriggerRect returns the strip geometry on a monitor of the given bounds.
func (p Placement) TriggerRect(monitor Rect) Rect {
	switch p.Edge {
	case EdgeTop:
		return Rect{X: monitor.X, Y: monitor.Y, Width: monitor.Width, Height: TriggerThickness}
	case EdgeLeft:
		return Rect{X: monitor.X, Y: monitor.Y, Width: TriggerThickness, Height: monitor.Height}
	case EdgeRight:
		return Rect{X: monitor.X + monitor.Width - TriggerThickness, Y: monitor.Y, Width: TriggerThickness, Height: monitor.Height}
	default:
		return Rect{X: monitor.X, Y: monitor.Y + monitor.Height - TriggerThickness, Width: monitor.Width, Height: TriggerThickness}
	}
}
