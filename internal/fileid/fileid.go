// Package fileid maps between absolute file-system paths and
// project-relative virtual identifiers.
//
// A VirtualID is the identity every compiler-facing lookup uses. It is
// derived purely from the project root and the file path: two paths
// that are equal after root-relative normalization yield the same
// VirtualID. A rename is a delete plus a create and yields a new
// VirtualID.
package fileid

import (
	"path"
	"path/filepath"
	"strings"
)

// SourceExtension marks a file as markup source rather than an asset.
const SourceExtension = ".typ"

// VirtualID is an opaque project-root-relative identifier. It is
// rooted and slash-separated regardless of host platform, e.g.
// "/chapters/intro.typ". The zero value is invalid.
type VirtualID string

// ToVirtual derives the VirtualID for absPath relative to root.
// It returns false when absPath is not a descendant of root.
func ToVirtual(root, absPath string) (VirtualID, bool) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(absPath))
	if err != nil {
		return "", false
	}

	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	if rel == "." {
		rel = ""
	}

	return VirtualID(path.Clean("/" + rel)), true
}

// ToAbsolute reconstructs the absolute path for id under root.
// Total by construction: every VirtualID resolves to a path.
func ToAbsolute(root string, id VirtualID) string {
	return filepath.Join(filepath.Clean(root), filepath.FromSlash(string(id)))
}

// FromName builds the VirtualID for a file name at the project root.
func FromName(name string) VirtualID {
	return VirtualID(path.Clean("/" + path.Base(filepath.ToSlash(name))))
}

// IsSource reports whether id names a markup source file.
func (id VirtualID) IsSource() bool {
	return strings.EqualFold(path.Ext(string(id)), SourceExtension)
}

// Name returns the final path element of id.
func (id VirtualID) Name() string {
	return path.Base(string(id))
}

// Dir returns the rooted directory portion of id.
func (id VirtualID) Dir() string {
	return path.Dir(string(id))
}
