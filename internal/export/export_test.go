package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilBchii/tide/internal/compile"
	"github.com/lilBchii/tide/internal/compile/compiletest"
	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/logging"
	"github.com/lilBchii/tide/internal/world"
)

func newWorld(t *testing.T, main string) *world.World {
	t.Helper()
	w := world.New("/main.typ", nil)
	w.InsertSource("/main.typ", main)
	return w
}

func newExporter(compiler compile.Compiler) (*Exporter, *compiletest.CountingRasterizer) {
	raster := &compiletest.CountingRasterizer{}
	pipeline := compile.NewPipeline(compiler, logging.Discard())
	return New(pipeline, raster, raster, logging.Discard()), raster
}

func TestPDF(t *testing.T) {
	exporter, _ := newExporter(&compiletest.StaticCompiler{})
	path := filepath.Join(t.TempDir(), "out", "doc.pdf")

	require.NoError(t, exporter.PDF(context.Background(), newWorld(t, "= One"), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPNGWritesOneFilePerPage(t *testing.T) {
	exporter, raster := newExporter(&compiletest.StaticCompiler{})
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.png")

	// Two form-feed separated sections compile to two pages.
	w := newWorld(t, "= One\f= Two")
	require.NoError(t, exporter.PNG(context.Background(), w, path))

	for _, name := range []string{"doc-1.png", "doc-2.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	assert.Len(t, raster.Calls(), 2)
}

func TestSVGWritesOneFilePerPage(t *testing.T) {
	exporter, _ := newExporter(&compiletest.StaticCompiler{})
	dir := t.TempDir()

	w := newWorld(t, "= One\f= Two\f= Three")
	require.NoError(t, exporter.SVG(context.Background(), w, filepath.Join(dir, "doc.svg")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestExportAlwaysRecompiles(t *testing.T) {
	compiler := &compiletest.StaticCompiler{}
	exporter, _ := newExporter(compiler)
	dir := t.TempDir()
	w := newWorld(t, "= One")

	require.NoError(t, exporter.PDF(context.Background(), w, filepath.Join(dir, "a.pdf")))
	require.NoError(t, exporter.PDF(context.Background(), w, filepath.Join(dir, "b.pdf")))

	assert.Equal(t, 2, compiler.Compiles())
}

func TestExportMissingMain(t *testing.T) {
	exporter, _ := newExporter(&compiletest.StaticCompiler{})
	w := world.New("/ghost.typ", nil)

	err := exporter.PDF(context.Background(), w, filepath.Join(t.TempDir(), "doc.pdf"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestExportDoesNotMutateWorld(t *testing.T) {
	exporter, _ := newExporter(&compiletest.StaticCompiler{})
	w := newWorld(t, "= One")
	before, err := w.Source("/main.typ")
	require.NoError(t, err)

	require.NoError(t, exporter.PDF(context.Background(), w, filepath.Join(t.TempDir(), "doc.pdf")))

	after, err := w.Source("/main.typ")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPNGRenderFailureLeavesNoPartialSuccessError(t *testing.T) {
	raster := &compiletest.CountingRasterizer{FailPages: map[int]bool{1: true}}
	pipeline := compile.NewPipeline(&compiletest.StaticCompiler{}, logging.Discard())
	exporter := New(pipeline, raster, raster, logging.Discard())

	w := newWorld(t, "= One\f= Two")
	err := exporter.PNG(context.Background(), w, filepath.Join(t.TempDir(), "doc.png"))
	assert.Error(t, err)
}

func TestPagePath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "doc-1.png"), pagePath(filepath.Join("out", "doc.png"), 0, "png"))
	assert.Equal(t, "doc-3.svg", pagePath("doc.svg", 2, "svg"))
	assert.Equal(t, "doc-1.png", pagePath("doc", 0, "png"))
}
