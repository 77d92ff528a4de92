package config

import (
	"os"
	"path/filepath"

	"github.com/lilBchii/tide/internal/errors"
)

const appDirName = "tide"

// Env carries the filesystem locations the core reads and writes
// outside project roots.
type Env struct {
	// ConfigDir holds the user configuration file.
	ConfigDir string
	// FontsDir holds user-installed font files.
	FontsDir string
	// TemplatesDir holds installed project templates.
	TemplatesDir string
	// CacheDir holds the recent-project cache and other scratch state.
	CacheDir string
}

// NewEnv resolves the environment from the platform user directories.
func NewEnv() (*Env, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, errors.NewIOError("cannot resolve user config directory", err)
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, errors.NewIOError("cannot resolve user cache directory", err)
	}
	base := filepath.Join(configDir, appDirName)
	return &Env{
		ConfigDir:    base,
		FontsDir:     filepath.Join(base, "fonts"),
		TemplatesDir: filepath.Join(base, "templates"),
		CacheDir:     filepath.Join(cacheDir, appDirName),
	}, nil
}

// TestEnv returns an Env rooted under dir, for tests.
func TestEnv(dir string) *Env {
	return &Env{
		ConfigDir:    filepath.Join(dir, "config"),
		FontsDir:     filepath.Join(dir, "fonts"),
		TemplatesDir: filepath.Join(dir, "templates"),
		CacheDir:     filepath.Join(dir, "cache"),
	}
}

// ConfigFile returns the path of the user configuration file.
func (e *Env) ConfigFile() string {
	return filepath.Join(e.ConfigDir, "config.yml")
}

// RecentCache returns the path of the recent-project cache file.
func (e *Env) RecentCache() string {
	return filepath.Join(e.CacheDir, "recent.cache")
}

// EnsureDirs creates every directory the Env points at.
func (e *Env) EnsureDirs() error {
	for _, dir := range []string{e.ConfigDir, e.FontsDir, e.TemplatesDir, e.CacheDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.NewIOError("cannot create application directory", err).
				WithContext("dir", dir)
		}
	}
	return nil
}
