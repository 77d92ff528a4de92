// Package world implements the virtual file system handed to the
// external document compiler: project entries (markup sources and
// binary assets), the loaded font catalog, and the main-entry pointer.
//
// A World is owned by exactly one editor session and mutated only on
// the session's thread. Background work never receives the live World;
// it receives an independent Snapshot instead.
package world

import (
	"time"

	"github.com/lilBchii/tide/internal/fileid"
	"github.com/lilBchii/tide/internal/logging"
)

// DefaultTextSizePt is the library seed for body text size.
const DefaultTextSizePt = 11.0

// Library is the immutable style seed shared by every snapshot.
type Library struct {
	TextSizePt float64
}

// World composes the project store, the font catalog, and the main
// pointer. It implements the five read accessors the compiler contract
// requires: Source, File, Font, Main, Today.
type World struct {
	main    fileid.VirtualID
	store   *Store
	catalog *Catalog
	library *Library
}

// New constructs a World with an empty store and the given catalog.
// A nil catalog gets the bundled default set with no user directory.
func New(main fileid.VirtualID, catalog *Catalog) *World {
	if catalog == nil {
		catalog = NewCatalog("", logging.Default())
	}
	return &World{
		main:    main,
		store:   NewStore(),
		catalog: catalog,
		library: &Library{TextSizePt: DefaultTextSizePt},
	}
}

// InsertSource upserts markup source text under id.
func (w *World) InsertSource(id fileid.VirtualID, text string) {
	w.store.InsertSource(id, text)
}

// InsertAsset upserts asset bytes under id.
func (w *World) InsertAsset(id fileid.VirtualID, data []byte) {
	w.store.InsertAsset(id, data)
}

// ReplaceText swaps the text of an existing source entry, preserving
// its identity. No-op when id is absent.
func (w *World) ReplaceText(id fileid.VirtualID, text string) {
	w.store.ReplaceText(id, text)
}

// Remove deletes id from the store. Idempotent.
func (w *World) Remove(id fileid.VirtualID) {
	w.store.Remove(id)
}

// Contains reports whether id is present as a source or asset.
func (w *World) Contains(id fileid.VirtualID) bool {
	return w.store.Contains(id)
}

// SetMain reassigns the compilation entry point. Existence is not
// validated here; a dangling main surfaces as NotFound at compile time.
func (w *World) SetMain(id fileid.VirtualID) {
	w.main = id
}

// Main returns the identifier of the compilation entry point.
func (w *World) Main() fileid.VirtualID {
	return w.main
}

// Store exposes the underlying project store.
func (w *World) Store() *Store {
	return w.store
}

// Catalog exposes the font catalog.
func (w *World) Catalog() *Catalog {
	return w.catalog
}

// Library exposes the immutable style seed.
func (w *World) Library() *Library {
	return w.library
}

// Source resolves id to source text. Implements the compiler contract.
func (w *World) Source(id fileid.VirtualID) (string, error) {
	return w.store.Source(id)
}

// File resolves id to asset bytes. Implements the compiler contract.
func (w *World) File(id fileid.VirtualID) ([]byte, error) {
	return w.store.File(id)
}

// Font returns the catalog face at index, bounds-checked.
func (w *World) Font(index int) (Face, bool) {
	return w.catalog.Font(index)
}

// Today returns the current date shifted by offsetHours. A nil offset
// means local time. Offsets outside a day are invalid and report false.
func (w *World) Today(offsetHours *int) (time.Time, bool) {
	now := time.Now()
	if offsetHours == nil {
		y, m, d := now.Local().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}

	hours := *offsetHours
	if hours <= -24 || hours >= 24 {
		return time.Time{}, false
	}

	zone := time.FixedZone("offset", hours*3600)
	y, m, d := now.UTC().In(zone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

// Snapshot produces an independent deep copy safe to move into a
// background task. The store is deep-copied; the catalog and library
// are immutable and shared by reference.
func (w *World) Snapshot() *World {
	return &World{
		main:    w.main,
		store:   w.store.Clone(),
		catalog: w.catalog,
		library: w.library,
	}
}
