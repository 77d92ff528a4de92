package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/lilBchii/tide/internal/logging"
)

func TestNewCatalog_Defaults(t *testing.T) {
	catalog := NewCatalog("", logging.Discard())

	assert.Equal(t, 5, catalog.Len())

	face, ok := catalog.Font(0)
	assert.True(t, ok)
	assert.Equal(t, 0, face.Index)
	assert.NotEmpty(t, face.Family)
	assert.NotEmpty(t, face.Data)
}

func TestCatalog_FontBounds(t *testing.T) {
	catalog := NewCatalog("", logging.Discard())

	_, ok := catalog.Font(-1)
	assert.False(t, ok)
	_, ok = catalog.Font(catalog.Len())
	assert.False(t, ok)
}

func TestCatalog_Book(t *testing.T) {
	catalog := NewCatalog("", logging.Discard())
	book := catalog.Book()

	families := book.Families()
	assert.NotEmpty(t, families)

	// Every family resolves back to at least one face.
	for _, family := range families {
		indices := book.Select(family)
		assert.NotEmpty(t, indices, family)
		for _, idx := range indices {
			face, ok := catalog.Font(idx)
			assert.True(t, ok)
			assert.Equal(t, family, face.Family)
		}
	}
}

func TestNewCatalog_UserDirPartialFailure(t *testing.T) {
	dir := t.TempDir()

	// One valid font, one file that is not a font at all.
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "extra.ttf"), goregular.TTF, 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "junk.ttf"), []byte("not a font"), 0o644))

	catalog := NewCatalog(dir, logging.Discard())

	// Defaults plus the one parseable user font; the junk is skipped,
	// never fatal.
	assert.Equal(t, 6, catalog.Len())
}

func TestNewCatalog_MissingUserDir(t *testing.T) {
	catalog := NewCatalog(filepath.Join(t.TempDir(), "does-not-exist"), logging.Discard())

	assert.Equal(t, 5, catalog.Len())
}
