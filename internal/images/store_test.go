package images

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndOpen(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save(strings.NewReader("fake-png-bytes"), "poster.PNG")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(ref, ".png"), "extension is normalized to lowercase")
	require.Equal(t, ref, filepath.Base(ref), "references are bare file names")

	file, err := store.Open(ref)
	require.NoError(t, err)
	defer file.Close()

	data, err := os.ReadFile(file.Name())
	require.NoError(t, err)
	require.Equal(t, "fake-png-bytes", string(data))
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(strings.NewReader("#!/bin/sh"), "payload.sh")
	require.Error(t, err)

	_, err = store.Save(strings.NewReader("x"), "noextension")
	require.Error(t, err)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	ref, err := store.Save(strings.NewReader("bytes"), "a.jpg")
	require.NoError(t, err)

	require.NoError(t, store.Remove(ref))
	_, err = os.Stat(filepath.Join(dir, ref))
	require.True(t, os.IsNotExist(err))

	// Removing again is fine; cleanup is best effort.
	require.NoError(t, store.Remove(ref))
	require.NoError(t, store.Remove(""))
}

func TestRemoveRejectsPathEscapes(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.Error(t, store.Remove("../etc/passwd"))
	require.Error(t, store.Remove("nested/name.png"))

	_, err = store.Open("../etc/passwd")
	require.Error(t, err)
}

func TestNewStoreRequiresDir(t *testing.T) {
	_, err := NewStore("")
	require.Error(t, err)
}
