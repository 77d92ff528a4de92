package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lilBchii/tide/internal/errors"
)

// MaxRecent caps how many projects the recent cache remembers.
const MaxRecent = 5

// noMain marks a recent record whose main file was never chosen.
const noMain = "?"

// Recent is one remembered project.
type Recent struct {
	// Root is the absolute project root.
	Root string
	// Main is the project-relative main file, empty when unknown.
	Main string
}

// LoadRecent reads the recent-project cache at path. A missing cache is
// an empty list, not an error. Malformed lines are dropped.
func LoadRecent(path string) ([]Recent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewIOError("cannot read recent cache", err).
			WithContext("path", path)
	}

	var recents []Recent
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		root, main, ok := strings.Cut(line, ",")
		if !ok || root == "" {
			continue
		}
		if main == noMain {
			main = ""
		}
		recents = append(recents, Recent{Root: root, Main: main})
		if len(recents) == MaxRecent {
			break
		}
	}
	return recents, nil
}

// Remember prepends entry to the cache at path, dropping any earlier
// record with the same root and truncating to MaxRecent.
func Remember(path string, entry Recent) error {
	recents, err := LoadRecent(path)
	if err != nil {
		return err
	}

	updated := []Recent{entry}
	for _, recent := range recents {
		if recent.Root == entry.Root {
			continue
		}
		updated = append(updated, recent)
	}
	if len(updated) > MaxRecent {
		updated = updated[:MaxRecent]
	}
	return writeRecent(path, updated)
}

// Forget removes the record for root from the cache at path.
func Forget(path, root string) error {
	recents, err := LoadRecent(path)
	if err != nil {
		return err
	}
	updated := recents[:0]
	for _, recent := range recents {
		if recent.Root != root {
			updated = append(updated, recent)
		}
	}
	return writeRecent(path, updated)
}

func writeRecent(path string, recents []Recent) error {
	var b strings.Builder
	for _, recent := range recents {
		main := recent.Main
		if main == "" {
			main = noMain
		}
		b.WriteString(recent.Root)
		b.WriteString(",")
		b.WriteString(main)
		b.WriteString("\n")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.NewIOError("cannot create cache directory", err).
			WithContext("path", path)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return errors.NewIOError("cannot write recent cache", err).
			WithContext("path", path)
	}
	return nil
}
