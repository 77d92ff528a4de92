package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilBchii/tide/internal/errors"
)

func TestSaveFile(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, SaveFile(root, "/chapters/one.typ", "= One"))

	data, err := os.ReadFile(filepath.Join(root, "chapters", "one.typ"))
	require.NoError(t, err)
	assert.Equal(t, "= One", string(data))
}

func TestSaveFileOverwrites(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.typ", []byte("old"))

	require.NoError(t, SaveFile(root, "/main.typ", "new"))

	data, err := os.ReadFile(filepath.Join(root, "main.typ"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestSaveFileLeavesNoTempOnSuccess(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, SaveFile(root, "/main.typ", "= Main"))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "main.typ", entries[0].Name())
}

func TestWriteAsset(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, WriteAsset(root, "/img/logo.png", []byte{1, 2, 3}))

	data, err := os.ReadFile(filepath.Join(root, "img", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestDeleteFile(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "main.typ", []byte("= Main"))

	require.NoError(t, DeleteFile(root, "/main.typ"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteFileMissing(t *testing.T) {
	root := t.TempDir()

	err := DeleteFile(root, "/missing.typ")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
