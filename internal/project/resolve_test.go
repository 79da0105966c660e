package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestResolveImagePath(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)

	touch(t, filepath.Join("input_images", "table.png"))
	touch(t, filepath.Join("photos", "deep", "gearbox.jpg"))
	touch(t, "chair.jpg")

	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"existing path", "chair.jpg", "chair.jpg"},
		{"bare name in input dir", "table.png", filepath.Join("input_images", "table.png")},
		{"recursive search", "gearbox.jpg", filepath.Join("photos", "deep", "gearbox.jpg")},
		{"recursive search by base name", "elsewhere/gearbox.jpg", filepath.Join("photos", "deep", "gearbox.jpg")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveImagePath(tt.arg, "input_images")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolveImagePath("missing.png", "input_images")
	assert.True(t, errors.Is(err, ErrImageNotFound))
}

func TestResolveImagePathDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := ResolveImagePath("", "input_images")
	assert.True(t, errors.Is(err, ErrImageNotFound))

	touch(t, filepath.Join("input_images", "download.jpg"))
	got, err := ResolveImagePath("", "input_images")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("input_images", "download.jpg"), got)

	touch(t, "download.png")
	got, err = ResolveImagePath("", "input_images")
	require.NoError(t, err)
	assert.Equal(t, "download.png", got, "working directory wins over input dir")
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.JPG"))
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "sub", "c.jpeg"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "anim.gif"))

	got, err := ScanDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.JPG"),
		filepath.Join(dir, "sub", "c.jpeg"),
	}, got)

	_, err = ScanDir(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}
