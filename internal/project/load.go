// Package project manages projects on disk: importing files into a
// world, saving and deleting them, the recent-project cache, templates,
// and filesystem watching.
package project

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/fileid"
	"github.com/lilBchii/tide/internal/logging"
	"github.com/lilBchii/tide/internal/world"
)

// AllTypes lists the file extensions a project import accepts.
var AllTypes = []string{"typ", "png", "jpg", "jpeg", "svg"}

// ImportedFile is one file read from disk, classified for the world.
type ImportedFile struct {
	ID   fileid.VirtualID
	Kind world.EntryKind
	Text string
	Data []byte
}

// Accepted reports whether the file name carries an importable extension.
func Accepted(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, allowed := range AllTypes {
		if ext == allowed {
			return true
		}
	}
	return false
}

// LoadFile reads path and classifies it relative to root. Files with a
// source extension are decoded as text, everything else stays raw bytes.
func LoadFile(root, path string) (*ImportedFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewIOError("cannot resolve file path", err).
			WithContext("path", path)
	}
	id, ok := fileid.ToVirtual(root, abs)
	if !ok {
		return nil, errors.NewIOError("file is outside the project root", nil).
			WithContext("path", path).
			WithContext("root", root)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.NewIOError("cannot read file", err).
			WithContext("path", path)
	}
	if id.IsSource() {
		return &ImportedFile{ID: id, Kind: world.EntryKindSource, Text: string(data)}, nil
	}
	return &ImportedFile{ID: id, Kind: world.EntryKindAsset, Data: data}, nil
}

// LoadRepo walks root recursively and imports every accepted file.
// Unreadable or unsupported files are skipped, not fatal.
func LoadRepo(root string, logger logging.Logger) ([]*ImportedFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.NewIOError("cannot open project root", err).
			WithContext("root", root)
	}
	if !info.IsDir() {
		return nil, errors.NewIOError("project root is not a directory", nil).
			WithContext("root", root)
	}

	ctx := context.Background()
	var files []*ImportedFile
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn(ctx, err, "skipping unreadable entry", "path", path)
			return nil
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !Accepted(entry.Name()) {
			return nil
		}
		file, err := LoadFile(root, path)
		if err != nil {
			logger.Warn(ctx, err, "skipping file", "path", path)
			return nil
		}
		files = append(files, file)
		return nil
	})
	if walkErr != nil {
		return nil, errors.NewIOError("cannot walk project root", walkErr).
			WithContext("root", root)
	}
	return files, nil
}

// Populate inserts imported files into w.
func Populate(w *world.World, files []*ImportedFile) {
	for _, file := range files {
		switch file.Kind {
		case world.EntryKindSource:
			w.InsertSource(file.ID, file.Text)
		case world.EntryKindAsset:
			w.InsertAsset(file.ID, file.Data)
		}
	}
}
