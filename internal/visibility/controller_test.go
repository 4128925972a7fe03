package visibility

import (
	"math"
	"testing"

	"github.com/desyatkoff/hydock/internal/layout"
	"github.com/desyatkoff/hydock/internal/surface"
)

func newController() (*Controller, *surface.Recorder, *surface.Recorder) {
	dock := surface.NewRecorder("dock")
	trigger := surface.NewRecorder("trigger")
	return New(dock, trigger, nil), dock, trigger
}

func TestInitialStateIsShown(t *testing.T) {
	c, _, _ := newController()
	if c.State() != Shown {
		t.Fatalf("initial state = %v, want shown", c.State())
	}
}

func TestAutoHideOffAlwaysShown(t *testing.T) {
	c, dock, trigger := newController()
	c.ApplyPolicy(false)

	events := []struct {
		target Target
		ev     surface.Hover
	}{
		{TargetDock, surface.PointerLeave},
		{TargetTrigger, surface.PointerEnter},
		{TargetDock, surface.PointerLeave},
		{TargetDock, surface.PointerEnter},
	}
	for _, e := range events {
		dock.Hover(e.ev)
		c.HandleHover(e.target, e.ev)
		if c.State() != Shown || !dock.Visible() {
			t.Fatalf("dock hidden after %v %v with auto-hide off", e.target, e.ev)
		}
	}
	if trigger.Visible() {
		t.Fatalf("trigger should be hidden with auto-hide off")
	}
	if dock.Listening() || trigger.Listening() {
		t.Fatalf("hover listeners should be detached with auto-hide off")
	}
}

func TestAutoHideLeaveThenEnterTrigger(t *testing.T) {
	c, dock, trigger := newController()
	c.ApplyPolicy(true)
	if !trigger.Visible() || !dock.Listening() || !trigger.Listening() {
		t.Fatalf("auto-hide should show the trigger and attach listeners")
	}

	dock.Hover(surface.PointerLeave)
	if c.State() != Hidden || dock.Visible() {
		t.Fatalf("leave dock should hide it, state=%v visible=%v", c.State(), dock.Visible())
	}

	c.ApplyPolicy(true)
	if c.State() != Hidden || dock.Visible() {
		t.Fatalf("a refresh must not re-show a hidden dock")
	}

	dock.Hover(surface.PointerEnter)
	if c.State() != Hidden {
		t.Fatalf("entering the dock surface itself should not change state")
	}

	trigger.Hover(surface.PointerEnter)
	if c.State() != Shown || !dock.Visible() {
		t.Fatalf("entering the trigger should show the dock")
	}
}

func TestDisablingAutoHideWhileHiddenForcesShown(t *testing.T) {
	c, dock, trigger := newController()
	c.ApplyPolicy(true)
	dock.Hover(surface.PointerLeave)

	c.ApplyPolicy(false)
	if c.State() != Shown || !dock.Visible() || trigger.Visible() {
		t.Fatalf("disabling auto-hide should force the dock visible")
	}
	if dock.Hover(surface.PointerLeave) {
		t.Fatalf("listener still attached after disabling auto-hide")
	}
}

func TestPostFuncReceivesEvents(t *testing.T) {
	dock := surface.NewRecorder("dock")
	trigger := surface.NewRecorder("trigger")
	type posted struct {
		target Target
		ev     surface.Hover
	}
	var got []posted
	c := New(dock, trigger, func(target Target, ev surface.Hover) {
		got = append(got, posted{target, ev})
	})
	c.ApplyPolicy(true)

	dock.Hover(surface.PointerLeave)
	trigger.Hover(surface.PointerEnter)
	if len(got) != 2 || got[0] != (posted{TargetDock, surface.PointerLeave}) || got[1] != (posted{TargetTrigger, surface.PointerEnter}) {
		t.Fatalf("unexpected posted events %+v", got)
	}
	if c.State() != Shown {
		t.Fatalf("posted events must not be applied until HandleHover runs")
	}
}

func TestReanchorPreservesState(t *testing.T) {
	c, dock, trigger := newController()
	c.Reanchor(layout.PlacementFor("bottom"))
	c.ApplyPolicy(true)
	dock.Hover(surface.PointerLeave)

	c.Reanchor(layout.PlacementFor("left"))
	if c.State() != Hidden {
		t.Fatalf("reanchoring must preserve visibility state")
	}
	if dock.Anchor() != layout.EdgeLeft || trigger.Anchor() != layout.EdgeLeft {
		t.Fatalf("surfaces not re-anchored: dock=%v trigger=%v", dock.Anchor(), trigger.Anchor())
	}
	if dock.Orientation() != layout.Vertical {
		t.Fatalf("dock orientation = %v, want vertical", dock.Orientation())
	}
	if w, h := trigger.Size(); w != layout.TriggerThickness || h != math.MaxInt32 {
		t.Fatalf("trigger size = %dx%d", w, h)
	}
	if !dock.ExclusiveZone() || trigger.ExclusiveZone() {
		t.Fatalf("only the dock should reserve an exclusive zone")
	}
}
