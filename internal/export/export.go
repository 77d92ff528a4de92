// Package export turns a project into deliverable artifacts. Every
// export compiles a fresh world snapshot rather than reusing preview
// state, so the output always reflects the current sources.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lilBchii/tide/internal/compile"
	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/logging"
	"github.com/lilBchii/tide/internal/world"
)

// exportZoom renders page images at their natural scale.
const exportZoom float32 = 1.0

// Exporter compiles a world and writes artifacts to disk.
type Exporter struct {
	pipeline   *compile.Pipeline
	rasterizer compile.Rasterizer
	encoder    compile.Exporter
	logger     logging.Logger
}

// New creates an Exporter over the given pipeline and encoders.
func New(pipeline *compile.Pipeline, rasterizer compile.Rasterizer, encoder compile.Exporter, logger logging.Logger) *Exporter {
	return &Exporter{
		pipeline:   pipeline,
		rasterizer: rasterizer,
		encoder:    encoder,
		logger:     logger,
	}
}

// PDF compiles w and writes a single paged binary to path.
func (e *Exporter) PDF(ctx context.Context, w *world.World, path string) error {
	doc, err := e.compileFresh(ctx, w)
	if err != nil {
		return err
	}
	data, err := e.encoder.RenderPDF(ctx, doc)
	if err != nil {
		return errors.NewRenderError("cannot encode document", err)
	}
	if err := writeArtifact(path, data); err != nil {
		return err
	}
	e.logger.Info(ctx, "exported document", "path", path, "pages", doc.PageCount())
	return nil
}

// PNG compiles w and writes one raster image per page next to path,
// named base-<n>.png. Pages encode concurrently.
func (e *Exporter) PNG(ctx context.Context, w *world.World, path string) error {
	doc, err := e.compileFresh(ctx, w)
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, page := range doc.Pages {
		page := page
		group.Go(func() error {
			data, err := e.rasterizer.Render(ctx, page, exportZoom)
			if err != nil {
				return errors.NewRenderError("cannot render page", err).
					WithContext("page", page.Number)
			}
			return writeArtifact(pagePath(path, page.Number, "png"), data)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	e.logger.Info(ctx, "exported page images", "path", path, "pages", doc.PageCount())
	return nil
}

// SVG compiles w and writes one vector image per page next to path,
// named base-<n>.svg.
func (e *Exporter) SVG(ctx context.Context, w *world.World, path string) error {
	doc, err := e.compileFresh(ctx, w)
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, page := range doc.Pages {
		page := page
		group.Go(func() error {
			data, err := e.encoder.RenderSVG(ctx, page)
			if err != nil {
				return errors.NewRenderError("cannot encode page", err).
					WithContext("page", page.Number)
			}
			return writeArtifact(pagePath(path, page.Number, "svg"), data)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	e.logger.Info(ctx, "exported page images", "path", path, "pages", doc.PageCount())
	return nil
}

func (e *Exporter) compileFresh(ctx context.Context, w *world.World) (*compile.Document, error) {
	result := e.pipeline.Compile(ctx, w.Snapshot())
	if result.Err != nil {
		return nil, result.Err
	}
	if result.Document == nil || result.Document.PageCount() == 0 {
		return nil, errors.NewCompileError("document has no pages", nil)
	}
	return result.Document, nil
}

// pagePath derives the per-page artifact path: base-<n>.<ext> with a
// one-based page number.
func pagePath(path string, pageNumber int, ext string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return fmt.Sprintf("%s-%d.%s", base, pageNumber+1, ext)
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.NewIOError("cannot create export directory", err).
			WithContext("path", path)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.NewIOError("cannot write artifact", err).
			WithContext("path", path)
	}
	return nil
}
