// Package compile orchestrates the external document compiler against
// World snapshots.
//
// The compiler itself is a black box consumed through a narrow
// contract: it reads the snapshot through the five World accessors and
// returns a paginated document or unrecoverable diagnostics. This
// package supplies the contract types, a pipeline that collects
// metrics and non-fatal warnings, and a subprocess adapter.
package compile

import (
	"context"

	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/world"
)

// Page is one laid-out page of a compiled document. Geometry is in
// typographic points and is known even before any rasterization.
// Frame is the compiler's opaque layout payload for the page.
type Page struct {
	Number   int
	WidthPt  float64
	HeightPt float64
	Frame    []byte
}

// Document is the compiler's output: an ordered sequence of laid-out
// pages with known geometry.
type Document struct {
	Pages []Page
}

// Clone returns an independently-owned copy of the document, safe to
// hand to a render pass without lifetime coupling to the pipeline.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	pages := make([]Page, len(d.Pages))
	copy(pages, d.Pages)
	for i := range pages {
		if pages[i].Frame != nil {
			frame := make([]byte, len(pages[i].Frame))
			copy(frame, d.Pages[i].Frame)
			pages[i].Frame = frame
		}
	}
	return &Document{Pages: pages}
}

// PageCount returns the number of pages, tolerating a nil document.
func (d *Document) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// Compiler is the consumed compiler contract. Compile must not mutate
// the world it receives; non-fatal warnings go to the collector and
// never block success.
type Compiler interface {
	Compile(ctx context.Context, w *world.World, diags *errors.DiagnosticCollector) (*Document, error)
}

// Rasterizer converts one page of a compiled document at a zoom scalar
// into an encoded image buffer.
type Rasterizer interface {
	Render(ctx context.Context, page Page, zoom float32) ([]byte, error)
}

// Exporter is the whole-document encoding contract used by export
// flows: a single paged binary, or one vector image per page.
type Exporter interface {
	RenderPDF(ctx context.Context, doc *Document) ([]byte, error)
	RenderSVG(ctx context.Context, page Page) ([]byte, error)
}
