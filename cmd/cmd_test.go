package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRoot(t *testing.T) {
	dir := t.TempDir()

	root, err := projectRoot([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, root)

	_, err = projectRoot([]string{dir + "/missing"})
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.True(t, strings.HasPrefix(out.String(), "tide "))
}

func TestLogLevelFlagBound(t *testing.T) {
	flags := rootCmd.PersistentFlags()
	require.NotNil(t, flags.Lookup("log-level"))
	require.NoError(t, flags.Set("log-level", "debug"))
	defer func() { _ = flags.Set("log-level", "info") }()
	assert.Equal(t, "debug", viper.GetString("log-level"))
}

func TestRootRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"compile", "export", "serve", "fonts", "projects", "templates", "version"} {
		assert.True(t, names[want], want)
	}
}
