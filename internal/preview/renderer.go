package preview

import (
	"context"
	"sync"

	"github.com/lilBchii/tide/internal/compile"
	"github.com/lilBchii/tide/internal/logging"
)

// State is the renderer's effective state.
type State int

const (
	// StateIdle means no reload is wanted.
	StateIdle State = iota
	// StateReloadPending means a trigger fired and the visible range
	// must be recomputed.
	StateReloadPending
	// StateRendering means a render pass is in flight.
	StateRendering
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReloadPending:
		return "reload-pending"
	case StateRendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// Pass describes one dispatched render pass: the document revision it
// renders, the page range to rasterize, and the zoom to rasterize at.
type Pass struct {
	Document   *compile.Document
	Range      Range
	Zoom       float32
	generation uint64
}

// Result carries a completed pass and its full record vector, ready to
// replace the cache wholesale.
type Result struct {
	Pass    Pass
	Records []PageRecord
}

// Options tunes the renderer.
type Options struct {
	Gap             float32
	ScrollThreshold float32
}

// Renderer decides when to re-render, which pages to rasterize, and
// folds results back into the page cache. Rasterization is gated by
// visibility: only pages inside the visible range get pixels, every
// other page is a placeholder carrying its known geometry.
type Renderer struct {
	rasterizer compile.Rasterizer
	cache      *Cache
	logger     logging.Logger

	gap             float32
	scrollThreshold float32

	mutex         sync.Mutex
	state         State
	viewport      Viewport
	doc           *compile.Document
	lastRange     Range
	lastZoom      float32
	anchorScroll  float32
	rendered      bool
	generation    uint64
	appliedGen    uint64
}

// NewRenderer creates a renderer over the given rasterizer.
func NewRenderer(rasterizer compile.Rasterizer, opts Options, logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.Default()
	}
	gap := opts.Gap
	if gap == 0 {
		gap = DefaultPageGap
	}
	threshold := opts.ScrollThreshold
	if threshold == 0 {
		threshold = DefaultScrollThreshold
	}
	return &Renderer{
		rasterizer:      rasterizer,
		cache:           NewCache(),
		logger:          logger.WithComponent("preview"),
		gap:             gap,
		scrollThreshold: threshold,
		viewport:        Viewport{Zoom: 1.0},
	}
}

// Cache exposes the page cache the renderer owns.
func (r *Renderer) Cache() *Cache {
	return r.cache
}

// State returns the current renderer state.
func (r *Renderer) State() State {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state
}

// Viewport returns the current viewport state.
func (r *Renderer) Viewport() Viewport {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.viewport
}

// SetDocument installs a newly compiled document. The cache is
// immediately replaced with correctly sized placeholders so the UI can
// reserve scroll space before any rasterization, and a reload becomes
// pending.
func (r *Renderer) SetDocument(doc *compile.Document) {
	owned := doc.Clone()

	r.mutex.Lock()
	r.doc = owned
	r.rendered = false
	r.state = StateReloadPending

	records := make([]PageRecord, owned.PageCount())
	for i, page := range owned.Pages {
		records[i] = PageRecord{WidthPt: page.WidthPt, HeightPt: page.HeightPt}
	}
	r.mutex.Unlock()

	r.cache.Replace(records)
}

// SetZoom clamps and applies a new zoom factor. A zoom change always
// makes a reload pending.
func (r *Renderer) SetZoom(zoom float32) bool {
	zoom = ClampZoom(zoom)

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if zoom == r.viewport.Zoom {
		return false
	}
	r.viewport.Zoom = zoom
	r.state = StateReloadPending
	return true
}

// Scroll applies a new scroll offset. Only a delta beyond the scroll
// threshold (measured from the last accepted trigger) makes a reload
// pending; smaller movements update the viewport silently.
func (r *Renderer) Scroll(offset float32) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.viewport.ScrollOffset = offset

	delta := offset - r.anchorScroll
	if delta < 0 {
		delta = -delta
	}
	if delta <= r.scrollThreshold {
		return false
	}

	r.anchorScroll = offset
	r.state = StateReloadPending
	return true
}

// SetViewportHeight applies a viewport resize and makes a reload
// pending when the height changed.
func (r *Renderer) SetViewportHeight(height float32) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if height == r.viewport.Height {
		return false
	}
	r.viewport.Height = height
	r.state = StateReloadPending
	return true
}

// ForceReload makes a reload pending unconditionally, used after a
// fresh compile.
func (r *Renderer) ForceReload() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.state = StateReloadPending
}

// Begin attempts the ReloadPending -> Rendering transition. It
// recomputes the visible range; when the range and zoom are unchanged
// from the last rendered pass the transition aborts back to Idle and
// no work is dispatched.
func (r *Renderer) Begin() (Pass, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.state != StateReloadPending {
		return Pass{}, false
	}

	if r.doc.PageCount() == 0 {
		// Empty document: empty cache, nothing to render.
		r.state = StateIdle
		return Pass{}, false
	}

	visible := r.viewport.VisibleRange(r.doc.Pages, r.gap)
	if r.rendered && visible == r.lastRange && r.viewport.Zoom == r.lastZoom {
		r.state = StateIdle
		return Pass{}, false
	}

	r.state = StateRendering
	r.generation++
	return Pass{
		Document:   r.doc,
		Range:      visible,
		Zoom:       r.viewport.Zoom,
		generation: r.generation,
	}, true
}

// Execute rasterizes the pass: pages inside the range get pixels at
// the pass zoom, every other page becomes a placeholder with its known
// geometry. A per-page render failure degrades that page to a
// placeholder instead of aborting the pass.
func (r *Renderer) Execute(ctx context.Context, pass Pass) *Result {
	records := make([]PageRecord, len(pass.Document.Pages))
	for i, page := range pass.Document.Pages {
		records[i] = PageRecord{WidthPt: page.WidthPt, HeightPt: page.HeightPt}
		if !pass.Range.Contains(i) {
			continue
		}

		pixels, err := r.rasterizer.Render(ctx, page, pass.Zoom)
		if err != nil {
			r.logger.Warn(ctx, err, "page render failed, degrading to placeholder", "page", i)
			continue
		}
		records[i].Pixels = pixels
	}

	return &Result{Pass: pass, Records: records}
}

// Apply folds a completed pass back into the cache, replacing the
// record vector wholesale. Results are applied in arrival order; a
// completion older than one already applied is discarded.
func (r *Renderer) Apply(result *Result) bool {
	r.mutex.Lock()
	if result.Pass.generation < r.appliedGen {
		r.mutex.Unlock()
		r.logger.Debug(context.Background(), "discarding stale render result")
		return false
	}
	r.appliedGen = result.Pass.generation
	r.lastRange = result.Pass.Range
	r.lastZoom = result.Pass.Zoom
	r.rendered = true
	if r.state == StateRendering {
		r.state = StateIdle
	}
	r.mutex.Unlock()

	r.cache.Replace(result.Records)
	return true
}

// Render runs a full Begin/Execute/Apply cycle synchronously. It
// reports whether any work was performed.
func (r *Renderer) Render(ctx context.Context) bool {
	pass, ok := r.Begin()
	if !ok {
		return false
	}
	return r.Apply(r.Execute(ctx, pass))
}
