//go:build property

package preview

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/lilBchii/tide/internal/compile"
)

// TestViewportProperties validates the visible-range laws under
// arbitrary documents and viewport states.
func TestViewportProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	genPages := gen.SliceOf(gen.Float64Range(50, 2000)).Map(func(heights []float64) []compile.Page {
		pages := make([]compile.Page, len(heights))
		for i, h := range heights {
			pages[i] = compile.Page{Number: i, WidthPt: 595, HeightPt: h}
		}
		return pages
	})

	// Property: increasing scroll_offset at fixed zoom never decreases
	// first_index.
	properties.Property("visible range is monotonic in scroll", prop.ForAll(
		func(pages []compile.Page, zoom float64, a, b float32) bool {
			if len(pages) == 0 {
				return true
			}
			lo, hi := a, b
			if lo > hi {
				lo, hi = hi, lo
			}
			v := Viewport{Zoom: ClampZoom(float32(zoom)), Height: 500}

			v.ScrollOffset = lo
			first := v.VisibleRange(pages, DefaultPageGap)
			v.ScrollOffset = hi
			second := v.VisibleRange(pages, DefaultPageGap)

			return second.First >= first.First
		},
		genPages,
		gen.Float64Range(0.1, 3.0),
		gen.Float32Range(0, 100000),
		gen.Float32Range(0, 100000),
	))

	// Property: the computed range is always within the document and
	// contiguous by construction.
	properties.Property("visible range stays in bounds", prop.ForAll(
		func(pages []compile.Page, offset float32) bool {
			v := Viewport{Zoom: 1, ScrollOffset: offset, Height: 700}
			r := v.VisibleRange(pages, DefaultPageGap)
			if len(pages) == 0 {
				return r.Empty()
			}
			return r.First >= 0 && r.Last < len(pages) && r.First <= r.Last
		},
		genPages,
		gen.Float32Range(0, 100000),
	))

	properties.TestingRun(t)
}
