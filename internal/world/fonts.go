package world

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"

	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/logging"
)

// Face is one loaded font face. The index space of the catalog is
// fixed once built; the compiler addresses faces by position.
type Face struct {
	Index  int
	Family string
	Style  string
	Source string // file name, or "embedded" for the bundled set
	Data   []byte
}

// Book is the aggregate lookup metadata derived from the loaded faces,
// consumed opaquely by the compiler during layout.
type Book struct {
	families map[string][]int
}

// Select returns the face indices registered for a family name.
func (b *Book) Select(family string) []int {
	return b.families[family]
}

// Families returns all known family names in sorted order.
func (b *Book) Families() []string {
	names := make([]string, 0, len(b.families))
	for name := range b.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog holds the loaded font faces plus the derived book. Built
// once at World construction and read-only thereafter, so it is freely
// shareable between snapshots.
type Catalog struct {
	faces []Face
	book  *Book
}

// NewCatalog builds a catalog from the bundled default set plus any
// fonts found under userDir (which may be empty). Individual files
// that fail to parse are logged and skipped; catalog construction
// never fails.
func NewCatalog(userDir string, logger logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.WithComponent("fonts")

	c := &Catalog{book: &Book{families: make(map[string][]int)}}

	for _, def := range defaultFonts() {
		c.addFaces(def.data, def.name, logger)
	}

	if userDir != "" {
		c.loadDir(userDir, logger)
	}

	return c
}

// Font returns the face at index. Bounds-checked: out-of-range lookups
// report false instead of failing.
func (c *Catalog) Font(index int) (Face, bool) {
	if index < 0 || index >= len(c.faces) {
		return Face{}, false
	}
	return c.faces[index], true
}

// Len returns the number of loaded faces.
func (c *Catalog) Len() int {
	return len(c.faces)
}

// Book returns the aggregate lookup metadata.
func (c *Catalog) Book() *Book {
	return c.book
}

type embeddedFont struct {
	name string
	data []byte
}

func defaultFonts() []embeddedFont {
	return []embeddedFont{
		{"embedded:go-regular", goregular.TTF},
		{"embedded:go-bold", gobold.TTF},
		{"embedded:go-italic", goitalic.TTF},
		{"embedded:go-bolditalic", gobolditalic.TTF},
		{"embedded:go-mono", gomono.TTF},
	}
}

func (c *Catalog) loadDir(dir string, logger logging.Logger) {
	ctx := context.Background()

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn(ctx, err, "cannot read font directory", "dir", dir)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn(ctx, errors.NewFontLoadError("cannot read font file", err), "skipping font", "path", path)
			continue
		}
		logger.Debug(ctx, "font found", "path", path)
		c.addFaces(data, entry.Name(), logger)
	}
}

// addFaces parses data as a font or font collection and registers every
// face it contains. Parse failures are logged and skipped.
func (c *Catalog) addFaces(data []byte, source string, logger logging.Logger) {
	ctx := context.Background()

	coll, err := sfnt.ParseCollection(data)
	if err != nil {
		logger.Warn(ctx, errors.NewFontLoadError("cannot parse font", err), "skipping font", "source", source)
		return
	}

	for i := 0; i < coll.NumFonts(); i++ {
		f, err := coll.Font(i)
		if err != nil {
			logger.Warn(ctx, errors.NewFontLoadError("cannot load font face", err), "skipping face", "source", source, "face", i)
			continue
		}

		family, err := f.Name(nil, sfnt.NameIDFamily)
		if err != nil {
			family = "Unknown"
		}
		style, err := f.Name(nil, sfnt.NameIDSubfamily)
		if err != nil {
			style = "Regular"
		}

		face := Face{
			Index:  len(c.faces),
			Family: family,
			Style:  style,
			Source: source,
			Data:   data,
		}
		c.faces = append(c.faces, face)
		c.book.families[family] = append(c.book.families[family], face.Index)
	}
}
