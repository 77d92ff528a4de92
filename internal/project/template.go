package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/fileid"
)

// ListTemplates returns the template names available under dir, sorted.
// Names are the file names without the source extension.
func ListTemplates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewIOError("cannot read templates directory", err).
			WithContext("dir", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), fileid.SourceExtension) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	sort.Strings(names)
	return names, nil
}

// InstallTemplate copies the named template into root as the project
// main file and returns its id.
func InstallTemplate(dir, name, root string) (fileid.VirtualID, error) {
	source := filepath.Join(dir, name+fileid.SourceExtension)
	data, err := os.ReadFile(source)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFoundError("template does not exist").
				WithContext("template", name)
		}
		return "", errors.NewIOError("cannot read template", err).
			WithContext("template", name)
	}
	id := fileid.FromName("main" + fileid.SourceExtension)
	if err := SaveFile(root, id, string(data)); err != nil {
		return "", err
	}
	return id, nil
}

// ExportTemplate copies the project file id into the templates dir
// under the given name.
func ExportTemplate(root string, id fileid.VirtualID, dir, name string) error {
	data, err := os.ReadFile(fileid.ToAbsolute(root, id))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("project file does not exist").
				WithContext("id", string(id))
		}
		return errors.NewIOError("cannot read project file", err).
			WithContext("id", string(id))
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.NewIOError("cannot create templates directory", err).
			WithContext("dir", dir)
	}
	target := filepath.Join(dir, name+fileid.SourceExtension)
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return errors.NewIOError("cannot write template", err).
			WithContext("template", name)
	}
	return nil
}
