package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultImageNames are tried, in order, when no image is named.
var DefaultImageNames = []string{"download.png", "download.jpg", "download.jpeg"}

// ErrImageNotFound is returned when no candidate path exists.
var ErrImageNotFound = errors.New("image not found")

// imageExts lists the extensions ScanDir picks up.
var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ResolveImagePath finds the image a user meant. Candidates are tried in
// order: arg as given, arg inside inputDir when it is a bare name, the
// default names in the working directory and then inputDir when arg is
// empty, and finally a recursive search for the base name under ".".
func ResolveImagePath(arg, inputDir string) (string, error) {
	var candidates []string
	if arg != "" {
		candidates = append(candidates, arg)
		if filepath.Base(arg) == arg && inputDir != "" {
			candidates = append(candidates, filepath.Join(inputDir, arg))
		}
	} else {
		candidates = append(candidates, DefaultImageNames...)
		if inputDir != "" {
			for _, name := range DefaultImageNames {
				candidates = append(candidates, filepath.Join(inputDir, name))
			}
		}
	}

	for _, c := range candidates {
		if isFile(c) {
			return c, nil
		}
	}

	names := DefaultImageNames
	if arg != "" {
		names = []string{filepath.Base(arg)}
	}
	if found := searchTree(".", names); found != "" {
		return found, nil
	}

	if arg == "" {
		return "", fmt.Errorf("%w: none of %s in . or %s", ErrImageNotFound, strings.Join(DefaultImageNames, ", "), inputDir)
	}
	return "", fmt.Errorf("%w: %s", ErrImageNotFound, arg)
}

// searchTree returns the first file under root whose base name is in names.
func searchTree(root string, names []string) string {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && want[d.Name()] {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// ScanDir returns the PNG and JPEG files under dir, recursively, sorted by path.
func ScanDir(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExts[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
