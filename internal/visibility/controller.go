// Package visibility implements the dock's auto-hide state machine. A
// Controller must only be driven from the goroutine that owns its surfaces.
package visibility

import (
	"github.com/desyatkoff/hydock/internal/layout"
	"github.com/desyatkoff/hydock/internal/surface"
)

// State is the dock visibility.
type State int

const (
	Shown State = iota
	Hidden
)

func (s State) String() string {
	if s == Hidden {
		return "hidden"
	}
	return "shown"
}

// Target names the surface a pointer event happened on.
type Target int

const (
	TargetDock Target = iota
	TargetTrigger
)

func (t Target) String() string {
	if t == TargetTrigger {
		return "trigger"
	}
	return "dock"
}

// PostFunc forwards a pointer event to the owning goroutine, which then calls
// HandleHover.
type PostFunc func(target Target, ev surface.Hover)

// Controller coordinates the dock surface and the thin trigger strip along the
// same edge.
type Controller struct {
	dock    surface.Surface
	trigger surface.Surface
	post    PostFunc

	state     State
	autoHide  bool
	listening bool
	anchored  bool
	placement layout.Placement
}

// New returns a controller in the Shown state. When post is nil pointer events
// are handled synchronously on the calling goroutine.
func New(dock, trigger surface.Surface, post PostFunc) *Controller {
	c := &Controller{dock: dock, trigger: trigger, state: Shown}
	if post == nil {
		post = c.HandleHover
	}
	c.post = post
	return c
}

// State returns the current visibility.
func (c *Controller) State() State {
	return c.state
}

// AutoHide reports the policy applied by the last ApplyPolicy call.
func (c *Controller) AutoHide() bool {
	return c.autoHide
}

// Placement returns the placement the surfaces are anchored with.
func (c *Controller) Placement() layout.Placement {
	return c.placement
}

// Reanchor moves both surfaces to the placement's edge when it changed. The
// visibility state is left untouched.
func (c *Controller) Reanchor(p layout.Placement) {
	if c.anchored && p == c.placement {
		return
	}
	c.placement = p
	c.anchored = true

	c.dock.SetAnchor(p.Edge)
	c.dock.SetOrientation(p.Orientation)
	c.dock.SetExclusiveZone(true)

	c.trigger.SetAnchor(p.Edge)
	c.trigger.SetOrientation(p.Orientation)
	c.trigger.SetExclusiveZone(false)
	c.trigger.SetSize(p.TriggerSize())
}

// ApplyPolicy is evaluated once per refresh with the latest auto_hide value.
// With auto-hide off the dock is forced visible, the trigger is hidden and no
// hover listeners remain attached.
func (c *Controller) ApplyPolicy(autoHide bool) {
	c.autoHide = autoHide
	if !autoHide {
		c.state = Shown
		c.detach()
		c.trigger.Hide()
		c.dock.Show()
		return
	}
	c.attach()
	c.trigger.Show()
	c.sync()
}

// HandleHover applies a pointer event. Events are ignored while auto-hide is
// off.
func (c *Controller) HandleHover(target Target, ev surface.Hover) {
	if !c.autoHide {
		return
	}
	switch {
	case target == TargetDock && ev == surface.PointerLeave:
		c.state = Hidden
	case target == TargetTrigger && ev == surface.PointerEnter:
		c.state = Shown
	default:
		return
	}
	c.sync()
}

func (c *Controller) sync() {
	if c.state == Hidden {
		c.dock.Hide()
		return
	}
	c.dock.Show()
}

func (c *Controller) attach() {
	if c.listening {
		return
	}
	c.dock.SetHoverHandler(func(ev surface.Hover) { c.post(TargetDock, ev) })
	c.trigger.SetHoverHandler(func(ev surface.Hover) { c.post(TargetTrigger, ev) })
	c.listening = true
}

func (c *Controller) detach() {
	if !c.listening {
		return
	}
	c.dock.SetHoverHandler(nil)
	c.trigger.SetHoverHandler(nil)
	c.listening = false
}
