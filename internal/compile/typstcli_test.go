package compile

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilBchii/tide/internal/logging"
)

// writePagePNG renders a blank page image whose pixel height encodes
// the one-based page number.
func writePagePNG(t *testing.T, dir string, number int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, number))
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("page-%d.png", number)))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestReadPages_NumericOrder(t *testing.T) {
	dir := t.TempDir()
	for n := 1; n <= 11; n++ {
		writePagePNG(t, dir, n)
	}

	c := NewCommandCompiler("typst", nil, logging.Discard())
	doc, err := c.readPages(dir)
	require.NoError(t, err)
	require.Equal(t, 11, doc.PageCount())

	for i, page := range doc.Pages {
		assert.Equal(t, i, page.Number)
		assert.InDelta(t, float64(i+1)*72.0/basePPI, page.HeightPt, 1e-9)
	}
}

func TestReadPages_StopsAtFirstGap(t *testing.T) {
	dir := t.TempDir()
	writePagePNG(t, dir, 1)
	writePagePNG(t, dir, 2)
	writePagePNG(t, dir, 4)

	c := NewCommandCompiler("typst", nil, logging.Discard())
	doc, err := c.readPages(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.PageCount())
}

func TestSwapScratch_RemovesStaleDirectory(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(first, "main.typ"), []byte("= a"), 0o600))

	c := NewCommandCompiler("typst", nil, logging.Discard())
	ctx := context.Background()

	c.swapScratch(ctx, first, "main.typ")
	c.swapScratch(ctx, second, "main.typ")

	workDir, mainRel := c.scratch()
	assert.Equal(t, second, workDir)
	assert.Equal(t, "main.typ", mainRel)
	_, err := os.Stat(first)
	assert.True(t, os.IsNotExist(err))
}
