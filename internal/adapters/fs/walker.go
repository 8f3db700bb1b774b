// Package fs provides file system adapters for walking and fingerprinting
// project trees.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// excludedDirs are directory names skipped at any depth: version-control
// metadata, dependency caches, build-artifact caches, editor state.
var excludedDirs = map[string]struct{}{
	".git":          {},
	".jj":           {},
	".hg":           {},
	".svn":          {},
	"node_modules":  {},
	"vendor":        {},
	"__pycache__":   {},
	".venv":         {},
	"venv":          {},
	"target":        {},
	"dist":          {},
	"build":         {},
	".cache":        {},
	".idea":         {},
	".vscode":       {},
	".pytest_cache": {},
	".mypy_cache":   {},
}

// includedExtensions is the allow-list of file extensions that contribute
// to a project fingerprint.
var includedExtensions = map[string]struct{}{
	".go":    {},
	".py":    {},
	".js":    {},
	".jsx":   {},
	".ts":    {},
	".tsx":   {},
	".java":  {},
	".kt":    {},
	".rb":    {},
	".rs":    {},
	".c":     {},
	".h":     {},
	".cc":    {},
	".cpp":   {},
	".hpp":   {},
	".cs":    {},
	".sh":    {},
	".sql":   {},
	".proto": {},
	".md":    {},
	".html":  {},
	".css":   {},
	".json":  {},
	".yaml":  {},
	".yml":   {},
	".toml":  {},
	".xml":   {},
}

// manifestNames are well-known manifest basenames included regardless of
// extension.
var manifestNames = map[string]struct{}{
	"go.mod":            {},
	"go.sum":            {},
	"package.json":      {},
	"package-lock.json": {},
	"Cargo.toml":        {},
	"Cargo.lock":        {},
	"requirements.txt":  {},
	"pyproject.toml":    {},
	"Gemfile":           {},
	"Makefile":          {},
	"Dockerfile":        {},
}

// Walker yields the files of a project tree that participate in the
// fingerprint.
type Walker struct {
	// extraIgnores are additional directory names to skip, typically the
	// cache directory itself so the cache never fingerprints its own
	// entries.
	extraIgnores []string
}

// NewWalker creates a new Walker.
func NewWalker(extraIgnores ...string) *Walker {
	return &Walker{extraIgnores: extraIgnores}
}

// WalkFiles yields the absolute paths of all included files under root.
// Walk errors on individual directories are skipped so a partially
// readable tree still produces a fingerprint.
func (w *Walker) WalkFiles(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != root && w.skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !included(d.Name()) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) skipDir(name string) bool {
	if _, ok := excludedDirs[name]; ok {
		return true
	}
	for _, ignore := range w.extraIgnores {
		if name == ignore {
			return true
		}
	}
	return false
}

// included reports whether a file participates in the fingerprint, by
// extension allow-list or well-known manifest name.
func included(name string) bool {
	if _, ok := manifestNames[name]; ok {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	_, ok := includedExtensions[ext]
	return ok
}
