package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lilBchii/tide/internal/compile"
)

func pagesOf(heights ...float64) []compile.Page {
	pages := make([]compile.Page, len(heights))
	for i, h := range heights {
		pages[i] = compile.Page{Number: i, WidthPt: 595, HeightPt: h}
	}
	return pages
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, MinZoom, ClampZoom(0.01))
	assert.Equal(t, MaxZoom, ClampZoom(10))
	assert.Equal(t, float32(1.5), ClampZoom(1.5))
}

func TestRange_Empty(t *testing.T) {
	assert.True(t, EmptyRange.Empty())
	assert.False(t, Range{First: 0, Last: 0}.Empty())
	assert.True(t, Range{First: 3, Last: 2}.Empty())
}

func TestRange_Contains(t *testing.T) {
	r := Range{First: 1, Last: 3}
	assert.False(t, r.Contains(0))
	assert.True(t, r.Contains(1))
	assert.True(t, r.Contains(3))
	assert.False(t, r.Contains(4))
	assert.False(t, EmptyRange.Contains(0))
}

func TestVisibleRange_EmptyDocument(t *testing.T) {
	v := Viewport{Zoom: 1, Height: 500}
	assert.True(t, v.VisibleRange(nil, DefaultPageGap).Empty())
}

func TestVisibleRange_TopOfDocument(t *testing.T) {
	v := Viewport{Zoom: 1, ScrollOffset: 0, Height: 400}

	r := v.VisibleRange(pagesOf(842, 842), DefaultPageGap)
	assert.Equal(t, Range{First: 0, Last: 0}, r)
}

func TestVisibleRange_PastFirstPage(t *testing.T) {
	// Page 0 spans [0, 842); page 1 starts at 857.
	v := Viewport{Zoom: 1, ScrollOffset: 860, Height: 400}

	r := v.VisibleRange(pagesOf(842, 842), DefaultPageGap)
	assert.Equal(t, Range{First: 1, Last: 1}, r)
}

func TestVisibleRange_SpansTwoPages(t *testing.T) {
	v := Viewport{Zoom: 1, ScrollOffset: 700, Height: 400}

	r := v.VisibleRange(pagesOf(842, 842), DefaultPageGap)
	assert.Equal(t, Range{First: 0, Last: 1}, r)
}

func TestVisibleRange_ViewportLargerThanDocument(t *testing.T) {
	v := Viewport{Zoom: 1, ScrollOffset: 0, Height: 100000}

	r := v.VisibleRange(pagesOf(842, 842, 842), DefaultPageGap)
	assert.Equal(t, Range{First: 0, Last: 2}, r)
}

func TestVisibleRange_ZoomScalesExtents(t *testing.T) {
	// At zoom 0.5 a 842pt page spans 421px, so two pages fit where one
	// did at zoom 1.
	v := Viewport{Zoom: 0.5, ScrollOffset: 0, Height: 900}

	r := v.VisibleRange(pagesOf(842, 842, 842), DefaultPageGap)
	assert.Equal(t, Range{First: 0, Last: 2}, r)

	v.Zoom = 2.0
	r = v.VisibleRange(pagesOf(842, 842, 842), DefaultPageGap)
	assert.Equal(t, Range{First: 0, Last: 0}, r)
}

func TestVisibleRange_ScrolledPastEndClampsToLastPage(t *testing.T) {
	v := Viewport{Zoom: 1, ScrollOffset: 1e6, Height: 400}

	r := v.VisibleRange(pagesOf(842, 842), DefaultPageGap)
	assert.Equal(t, Range{First: 1, Last: 1}, r)
}

func TestVisibleRange_MonotonicInScroll(t *testing.T) {
	pages := pagesOf(842, 600, 842, 300, 842)
	prev := Range{}

	for offset := float32(0); offset < 5000; offset += 37 {
		v := Viewport{Zoom: 1, ScrollOffset: offset, Height: 500}
		r := v.VisibleRange(pages, DefaultPageGap)
		if offset > 0 {
			assert.GreaterOrEqual(t, r.First, prev.First, "offset %v", offset)
		}
		prev = r
	}
}
