package project

import (
	"os"
	"path/filepath"

	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/fileid"
)

// SaveFile writes text to the on-disk location of id under root. The
// write goes through a temp file and rename so a failure leaves the
// previous content intact.
func SaveFile(root string, id fileid.VirtualID, text string) error {
	path := fileid.ToAbsolute(root, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.NewIOError("cannot create file directory", err).
			WithContext("path", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tide-save-*")
	if err != nil {
		return errors.NewIOError("cannot create temp file", err).
			WithContext("path", path)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewIOError("cannot write file", err).
			WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewIOError("cannot flush file", err).
			WithContext("path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.NewIOError("cannot replace file", err).
			WithContext("path", path)
	}
	return nil
}

// WriteAsset writes raw bytes to the on-disk location of id under root.
func WriteAsset(root string, id fileid.VirtualID, data []byte) error {
	path := fileid.ToAbsolute(root, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.NewIOError("cannot create file directory", err).
			WithContext("path", path)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.NewIOError("cannot write file", err).
			WithContext("path", path)
	}
	return nil
}

// DeleteFile removes the on-disk file for id under root. Callers delete
// from disk first, then drop the in-memory entry.
func DeleteFile(root string, id fileid.VirtualID) error {
	path := fileid.ToAbsolute(root, id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("file does not exist").
				WithContext("path", path)
		}
		return errors.NewIOError("cannot delete file", err).
			WithContext("path", path)
	}
	return nil
}
