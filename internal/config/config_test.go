package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	config := Default()

	assert.Equal(t, "typst", config.Compiler.Command)
	assert.Equal(t, float32(1.0), config.Preview.Zoom)
	assert.Equal(t, float32(15.0), config.Preview.PageGap)
	assert.Equal(t, "pdf", config.Export.Format)
	require.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults pass",
			mutate: func(c *Config) {},
		},
		{
			name:    "zoom below minimum",
			mutate:  func(c *Config) { c.Preview.Zoom = 0.05 },
			wantErr: true,
		},
		{
			name:    "zoom above maximum",
			mutate:  func(c *Config) { c.Preview.Zoom = 3.5 },
			wantErr: true,
		},
		{
			name:    "negative gap",
			mutate:  func(c *Config) { c.Preview.PageGap = -1 },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "unknown export format",
			mutate:  func(c *Config) { c.Export.Format = "docx" },
			wantErr: true,
		},
		{
			name:   "svg export format",
			mutate: func(c *Config) { c.Export.Format = "svg" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yml")

	config := Default()
	config.Server.Port = 9000
	require.NoError(t, config.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Config
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, 9000, loaded.Server.Port)
	assert.Equal(t, config.Preview, loaded.Preview)
}

func TestEnvPaths(t *testing.T) {
	env := TestEnv(t.TempDir())

	assert.Equal(t, filepath.Join(env.ConfigDir, "config.yml"), env.ConfigFile())
	assert.Equal(t, filepath.Join(env.CacheDir, "recent.cache"), env.RecentCache())

	require.NoError(t, env.EnsureDirs())
	for _, dir := range []string{env.ConfigDir, env.FontsDir, env.TemplatesDir, env.CacheDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
