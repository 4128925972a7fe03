package surface

import (
	"testing"

	"github.com/desyatkoff/hydock/internal/layout"
)

func TestRecorderTracksState(t *testing.T) {
	r := NewRecorder("dock")
	if r.Visible() {
		t.Fatalf("recorder should start hidden")
	}
	r.SetAnchor(layout.EdgeLeft)
	r.SetOrientation(layout.Vertical)
	r.Append(Widget{Kind: KindApp, Class: "kitty", Dots: 2})
	r.Append(Widget{Kind: KindLauncher})
	r.Show()
	r.Show()

	if !r.Visible() || r.Anchor() != layout.EdgeLeft || r.Orientation() != layout.Vertical {
		t.Fatalf("unexpected recorder state")
	}
	if got := len(r.Children()); got != 2 {
		t.Fatalf("children = %d, want 2", got)
	}
	r.RemoveAll()
	if len(r.Children()) != 0 || r.Clears() != 1 {
		t.Fatalf("RemoveAll did not clear children")
	}
}

func TestRecorderDeliversEvents(t *testing.T) {
	r := NewRecorder("dock")
	if r.Hover(PointerLeave) {
		t.Fatalf("hover delivered without a handler")
	}
	var hovers []Hover
	r.SetHoverHandler(func(h Hover) { hovers = append(hovers, h) })
	if !r.Listening() {
		t.Fatalf("expected listener to be attached")
	}
	r.Hover(PointerLeave)
	r.SetHoverHandler(nil)
	r.Hover(PointerEnter)
	if len(hovers) != 1 || hovers[0] != PointerLeave {
		t.Fatalf("unexpected hovers %v", hovers)
	}

	var clicks []Click
	r.SetClickHandler(func(c Click) { clicks = append(clicks, c) })
	r.Append(Widget{Kind: KindApp, Class: "firefox"})
	if r.Press(3, ButtonPrimary) {
		t.Fatalf("press outside children should be ignored")
	}
	if !r.Press(0, ButtonMiddle) {
		t.Fatalf("press was not delivered")
	}
	if len(clicks) != 1 || clicks[0].Widget.Class != "firefox" || clicks[0].Button != ButtonMiddle {
		t.Fatalf("unexpected clicks %+v", clicks)
	}
}

type replacingSurface struct {
	*Recorder
	replaced [][]Widget
}

func (r *replacingSurface) Replace(children []Widget) {
	r.replaced = append(r.replaced, children)
}

func TestRebuildPrefersReplace(t *testing.T) {
	children := []Widget{{Kind: KindApp, Class: "foot"}, {Kind: KindLauncher}}

	plain := NewRecorder("dock")
	plain.Append(Widget{Kind: KindApp, Class: "stale"})
	Rebuild(plain, children)
	if got := plain.Children(); len(got) != 2 || got[0].Class != "foot" || plain.Clears() != 1 {
		t.Fatalf("unexpected children after rebuild: %+v (clears %d)", got, plain.Clears())
	}

	batch := &replacingSurface{Recorder: NewRecorder("dock")}
	Rebuild(batch, children)
	if len(batch.replaced) != 1 || len(batch.replaced[0]) != 2 {
		t.Fatalf("expected one Replace call, got %+v", batch.replaced)
	}
	if batch.Clears() != 0 || len(batch.Children()) != 0 {
		t.Fatalf("Replace surfaces must not be cleared piecemeal")
	}
}
