package preview

import (
	"github.com/lilBchii/tide/internal/compile"
)

// Zoom bounds for the preview.
const (
	MinZoom float32 = 0.1
	MaxZoom float32 = 3.0
)

// DefaultPageGap is the inter-page spacing in pixels.
const DefaultPageGap float32 = 15.0

// DefaultScrollThreshold is the scroll delta in pixels below which a
// scroll tick does not trigger a reload. Chosen to avoid re-render
// storms on every pixel of movement.
const DefaultScrollThreshold float32 = 50.0

// ClampZoom bounds a zoom factor to [MinZoom, MaxZoom].
func ClampZoom(zoom float32) float32 {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

// Range is a contiguous page-index interval. The empty range has
// Last < First.
type Range struct {
	First int
	Last  int
}

// EmptyRange is the canonical empty visible range.
var EmptyRange = Range{First: 0, Last: -1}

// Empty reports whether the range contains no indices.
func (r Range) Empty() bool {
	return r.Last < r.First
}

// Contains reports whether index falls inside the range.
func (r Range) Contains(index int) bool {
	return index >= r.First && index <= r.Last
}

// Viewport is the current zoom factor, scroll offset, and viewport
// height, all in pixels except the dimensionless zoom.
type Viewport struct {
	Zoom         float32
	ScrollOffset float32
	Height       float32
}

// VisibleRange computes which page indices intersect the viewport
// window given cumulative page offsets. Each page occupies
// height*zoom vertical pixels followed by gap pixels of spacing.
// A viewport larger than the document yields the full range.
func (v Viewport) VisibleRange(pages []compile.Page, gap float32) Range {
	if len(pages) == 0 {
		return EmptyRange
	}

	top := v.ScrollOffset
	bottom := v.ScrollOffset + v.Height

	result := EmptyRange
	y := float32(0)
	for i, page := range pages {
		extent := float32(page.HeightPt) * v.Zoom
		pageTop := y
		pageBottom := y + extent

		if pageTop < bottom && pageBottom > top {
			if result.Empty() {
				result.First = i
			}
			result.Last = i
		}

		y = pageBottom + gap
	}

	// A viewport scrolled past the end still shows the final page, so
	// the UI never renders into a void.
	if result.Empty() {
		result = Range{First: len(pages) - 1, Last: len(pages) - 1}
	}

	return result
}
