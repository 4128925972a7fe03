package surface

import (
	"sync"

	"github.com/desyatkoff/hydock/internal/layout"
)

// Recorder is an in-memory Surface. It paints nothing and lets callers
// inspect state and inject pointer events.
type Recorder struct {
	mu          sync.Mutex
	name        string
	anchor      layout.Edge
	orientation layout.Orientation
	exclusive   bool
	width       int
	height      int
	style       string
	visible     bool
	children    []Widget
	hover       HoverHandler
	click       ClickHandler
	shows       int
	hides       int
	clears      int
}

// NewRecorder returns a hidden recorder.
func NewRecorder(name string) *Recorder {
	return &Recorder{name: name}
}

func (r *Recorder) Name() string { return r.name }

func (r *Recorder) SetAnchor(edge layout.Edge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anchor = edge
}

func (r *Recorder) SetExclusiveZone(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exclusive = enabled
}

func (r *Recorder) SetOrientation(o layout.Orientation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orientation = o
}

func (r *Recorder) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

func (r *Recorder) ApplyStyle(css string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.style = css
}

func (r *Recorder) Append(w Widget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.children = append(r.children, w)
}

func (r *Recorder) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.children = nil
	r.clears++
}

func (r *Recorder) Show() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = true
	r.shows++
}

func (r *Recorder) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = false
	r.hides++
}

func (r *Recorder) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible
}

func (r *Recorder) SetHoverHandler(h HoverHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hover = h
}

func (r *Recorder) SetClickHandler(h ClickHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.click = h
}

// Children returns a copy of the current children.
func (r *Recorder) Children() []Widget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Widget(nil), r.children...)
}

// Anchor returns the edge the surface is anchored to.
func (r *Recorder) Anchor() layout.Edge {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.anchor
}

// Orientation returns the child layout axis.
func (r *Recorder) Orientation() layout.Orientation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orientation
}

// Size returns the requested size.
func (r *Recorder) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// ExclusiveZone reports whether the surface reserves screen space.
func (r *Recorder) ExclusiveZone() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exclusive
}

// Style returns the last applied stylesheet.
func (r *Recorder) Style() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style
}

// Listening reports whether a hover handler is attached.
func (r *Recorder) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hover != nil
}

// Clears returns how many times RemoveAll was called.
func (r *Recorder) Clears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

// Hover delivers a crossing event to the attached handler, if any. It returns
// false when nothing is listening.
func (r *Recorder) Hover(ev Hover) bool {
	r.mu.Lock()
	h := r.hover
	r.mu.Unlock()
	if h == nil {
		return false
	}
	h(ev)
	return true
}

// Press delivers a click on the child at index. It returns false when the
// index is out of range or no click handler is attached.
func (r *Recorder) Press(index int, button Button) bool {
	r.mu.Lock()
	h := r.click
	if index < 0 || index >= len(r.children) {
		r.mu.Unlock()
		return false
	}
	w := r.children[index]
	r.mu.Unlock()
	if h == nil {
		return false
	}
	h(Click{Widget: w, Button: button})
	return true
}

var _ Surface = (*Recorder)(nil)
