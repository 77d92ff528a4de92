// Package compiletest provides in-memory implementations of the
// compiler and rasterizer contracts for tests and offline previews.
package compiletest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/lilBchii/tide/internal/compile"
	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/world"
)

// A4 page geometry in points.
const (
	A4WidthPt  = 595.0
	A4HeightPt = 842.0
)

// StaticCompiler compiles any world whose main pointer resolves to a
// source entry into a fixed-geometry document: one page per form-feed
// separated section of the main source, or exactly PageHeights when set.
type StaticCompiler struct {
	// PageHeights overrides the per-page geometry when set.
	PageHeights []float64
	// Warnings are emitted on every successful compile.
	Warnings []string
	// Err forces every compile to fail when set.
	Err error

	mutex    sync.Mutex
	compiles int
}

// Compile implements the compiler contract.
func (sc *StaticCompiler) Compile(_ context.Context, w *world.World, diags *errors.DiagnosticCollector) (*compile.Document, error) {
	sc.mutex.Lock()
	sc.compiles++
	sc.mutex.Unlock()

	if sc.Err != nil {
		return nil, sc.Err
	}

	text, err := w.Source(w.Main())
	if err != nil {
		return nil, err
	}

	for _, warning := range sc.Warnings {
		diags.Add(errors.SeverityWarning, warning)
	}

	doc := &compile.Document{}
	if len(sc.PageHeights) > 0 {
		for i, h := range sc.PageHeights {
			doc.Pages = append(doc.Pages, compile.Page{Number: i, WidthPt: A4WidthPt, HeightPt: h})
		}
		return doc, nil
	}

	pages := 1
	for _, r := range text {
		if r == '\f' {
			pages++
		}
	}
	for i := 0; i < pages; i++ {
		doc.Pages = append(doc.Pages, compile.Page{Number: i, WidthPt: A4WidthPt, HeightPt: A4HeightPt})
	}
	return doc, nil
}

// Compiles returns how many compile passes ran.
func (sc *StaticCompiler) Compiles() int {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	return sc.compiles
}

// CountingRasterizer renders solid-color page images and counts every
// rasterization call, so tests can assert the no-redundant-render
// property.
type CountingRasterizer struct {
	// FailPages makes rasterization fail for the listed page numbers.
	FailPages map[int]bool

	mutex sync.Mutex
	calls []int
}

// Render implements the rasterizer contract with a 1x1-per-10pt
// solid image, encoded as PNG.
func (cr *CountingRasterizer) Render(_ context.Context, page compile.Page, zoom float32) ([]byte, error) {
	cr.mutex.Lock()
	cr.calls = append(cr.calls, page.Number)
	cr.mutex.Unlock()

	if cr.FailPages[page.Number] {
		return nil, errors.NewRenderError("injected rasterizer failure", nil).WithContext("page", page.Number)
	}

	w := int(page.WidthPt * float64(zoom) / 10)
	h := int(page.HeightPt * float64(zoom) / 10)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.White)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.NewRenderError("png encode failed", err)
	}
	return buf.Bytes(), nil
}

// Calls returns the page numbers rasterized so far, in call order.
func (cr *CountingRasterizer) Calls() []int {
	cr.mutex.Lock()
	defer cr.mutex.Unlock()
	out := make([]int, len(cr.calls))
	copy(out, cr.calls)
	return out
}

// Reset clears the recorded calls.
func (cr *CountingRasterizer) Reset() {
	cr.mutex.Lock()
	defer cr.mutex.Unlock()
	cr.calls = nil
}

// RenderPDF implements the exporter contract with a minimal payload
// that identifies each page.
func (cr *CountingRasterizer) RenderPDF(_ context.Context, doc *compile.Document) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%fake-pdf pages=%d\n", doc.PageCount())
	return buf.Bytes(), nil
}

// RenderSVG implements the exporter contract with a sized rect.
func (cr *CountingRasterizer) RenderSVG(_ context.Context, page compile.Page) ([]byte, error) {
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f"/>`,
		page.WidthPt, page.HeightPt)), nil
}
