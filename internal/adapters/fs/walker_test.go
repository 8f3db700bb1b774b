package fs_test

import (
	"path/filepath"
	"slices"
	"testing"

	"go.trai.ch/stash/internal/adapters/fs"
)

func TestWalker_SelectsByExtensionAndManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "README.md", "# readme\n")
	writeFile(t, root, "Makefile", "all:\n")
	writeFile(t, root, "data.bin", "\x00")
	writeFile(t, root, "vendor/dep/dep.go", "package dep\n")
	writeFile(t, root, "custom-cache/entry.json", "{}")

	w := fs.NewWalker("custom-cache")
	var got []string
	for path := range w.WalkFiles(root) {
		rel, _ := filepath.Rel(root, path)
		got = append(got, filepath.ToSlash(rel))
	}
	slices.Sort(got)

	want := []string{"Makefile", "README.md", "main.go"}
	if !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestWalker_YieldStopsEarly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")
	writeFile(t, root, "b.go", "package b\n")

	w := fs.NewWalker()
	count := 0
	for range w.WalkFiles(root) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("expected the walk to stop after one file, yielded %d", count)
	}
}
