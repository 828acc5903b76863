package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Aleph-Alpha/colbert-search/v1/server"
)

// expandPatterns resolves doublestar globs to a sorted, de-duplicated list
// of regular files, dropping any path that matches an exclude pattern.
func expandPatterns(patterns, excludes []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, path := range matches {
			path = filepath.Clean(path)
			if _, ok := seen[path]; ok {
				continue
			}
			if excluded(path, excludes) {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	sort.Strings(files)
	return files, nil
}

func excluded(path string, excludes []string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range excludes {
		matched, err := doublestar.Match(pattern, slashed)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// loadDocuments reads each file into an index request keyed by its
// slash-separated path. Files with no visible text are returned in skipped.
func loadDocuments(paths []string) (docs []server.IndexRequest, skipped []string, err error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		text := string(data)
		if strings.TrimSpace(text) == "" {
			skipped = append(skipped, path)
			continue
		}
		docs = append(docs, server.IndexRequest{DocID: filepath.ToSlash(path), Text: text})
	}
	return docs, skipped, nil
}

func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}
