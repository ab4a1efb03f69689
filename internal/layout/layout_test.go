package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		width int
		want  Layout
	}{
		{320, Layout{Class: Compact, PageSize: 5, Tabs: true}},
		{639, Layout{Class: Compact, PageSize: 5, Tabs: true}},
		{640, Layout{Class: Medium, PageSize: 8}},
		{1023, Layout{Class: Medium, PageSize: 8}},
		{1024, Layout{Class: Wide, PageSize: 10}},
		{2560, Layout{Class: Wide, PageSize: 10}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultBreakpoints.Derive(tt.width), "width %d", tt.width)
	}
}

func TestObserver_NotifiesOnlyOnBreakpointChange(t *testing.T) {
	o := NewObserver(DefaultBreakpoints, DefaultWidth)

	var seen []Class
	o.Subscribe(func(l Layout) { seen = append(seen, l.Class) })

	o.Resize(1300) // still wide
	o.Resize(800)
	o.Resize(700) // still medium
	o.Resize(400)
	o.Resize(400)
	o.Resize(0) // ignored

	assert.Equal(t, []Class{Medium, Compact}, seen)
	assert.Equal(t, Compact, o.Current().Class)
}

func TestObserver_ResizeIsIdempotent(t *testing.T) {
	o := NewObserver(DefaultBreakpoints, DefaultWidth)
	first := o.Resize(500)
	second := o.Resize(500)
	assert.Equal(t, first, second)
}
