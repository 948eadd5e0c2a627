// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// CollectFiles expands every path into the files carrying extension: a file
// is taken as is when it matches, a directory is searched recursively.
// Missing paths are skipped and every file is returned once, in discovery
// order.
func CollectFiles(paths []string, extension string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if strings.HasSuffix(path, extension) {
				add(filepath.Clean(path))
			}
			continue
		}
		found, err := FindFilesByExtension(path, extension)
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}
		for _, f := range found {
			add(filepath.Clean(f))
		}
	}
	return out, nil
}
