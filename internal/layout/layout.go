// Package layout derives presentation-only settings (page size, tabbed or
// two-pane view) from a viewport width using explicit breakpoints.
//
// Nothing here touches entry data; a resize never changes what is loaded.
package layout

import "sync"

// Class is a named breakpoint range.
type Class string

const (
	Compact Class = "compact"
	Medium  Class = "medium"
	Wide    Class = "wide"
)

// Breakpoints are the minimum widths, in CSS pixels, of the medium and wide
// classes. Anything narrower than Medium is compact.
type Breakpoints struct {
	Medium int
	Wide   int
}

// DefaultBreakpoints match common phone/tablet/desktop splits.
var DefaultBreakpoints = Breakpoints{Medium: 640, Wide: 1024}

// DefaultWidth is assumed when the client has not reported a width yet.
const DefaultWidth = 1280

// Layout is the derived presentation state.
type Layout struct {
	Class    Class `json:"class"`
	PageSize int   `json:"pageSize"`
	// Tabs is true when the form and the list are shown as tabs instead of
	// side by side.
	Tabs bool `json:"tabs"`
}

// Derive maps a width to its layout.
func (b Breakpoints) Derive(width int) Layout {
	switch {
	case width < b.Medium:
		return Layout{Class: Compact, PageSize: 5, Tabs: true}
	case width < b.Wide:
		return Layout{Class: Medium, PageSize: 8}
	default:
		return Layout{Class: Wide, PageSize: 10}
	}
}

// Observer tracks the current layout and notifies subscribers when a resize
// crosses a breakpoint. Resizes within the same class are no-ops.
type Observer struct {
	mu          sync.Mutex
	breakpoints Breakpoints
	current     Layout
	subscribers []func(Layout)
}

// NewObserver starts an observer at the given width.
func NewObserver(b Breakpoints, width int) *Observer {
	return &Observer{breakpoints: b, current: b.Derive(width)}
}

// Current returns the current layout.
func (o *Observer) Current() Layout {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Subscribe registers fn to be called after every layout change.
func (o *Observer) Subscribe(fn func(Layout)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subscribers = append(o.subscribers, fn)
}

// Resize reports a new viewport width and returns the resulting layout.
// Subscribers run outside the lock, only when the layout changed.
func (o *Observer) Resize(width int) Layout {
	if width <= 0 {
		return o.Current()
	}

	o.mu.Lock()
	next := o.breakpoints.Derive(width)
	if next == o.current {
		o.mu.Unlock()
		return next
	}
	o.current = next
	subs := append([]func(Layout){}, o.subscribers...)
	o.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}
