package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fingerprinter = (*Fingerprinter)(nil)

// Fingerprinter computes project fingerprints from file contents.
type Fingerprinter struct {
	walker *Walker
	logger ports.Logger
}

// NewFingerprinter creates a new Fingerprinter.
func NewFingerprinter(walker *Walker, logger ports.Logger) *Fingerprinter {
	return &Fingerprinter{walker: walker, logger: logger}
}

// Fingerprint walks root, hashes every included file and folds the sorted
// records into a single digest. Identical directory contents always
// produce the identical fingerprint regardless of walk order; a
// single-byte change to any included file changes it.
func (f *Fingerprinter) Fingerprint(root string) (domain.Fingerprint, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to stat project root"), "root", root)
	}
	if !info.IsDir() {
		return "", zerr.With(zerr.New("project root is not a directory"), "root", root)
	}

	records := f.collect(root)

	// Sort by relative path so filesystem iteration order never leaks
	// into the digest.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})

	h := sha256.New()
	for _, rec := range records {
		// Canonical encoding: path, size and content hash separated by
		// NUL bytes. ModTime is deliberately excluded so touching a file
		// without changing it keeps the fingerprint stable.
		_, _ = io.WriteString(h, rec.Path)
		_, _ = h.Write([]byte{0})
		_, _ = io.WriteString(h, fmt.Sprintf("%d", rec.Size))
		_, _ = h.Write([]byte{0})
		_, _ = io.WriteString(h, rec.ContentHash)
		_, _ = h.Write([]byte{0})
	}

	return domain.Fingerprint(hex.EncodeToString(h.Sum(nil))), nil
}

// collect gathers a FileRecord per included file. Files that vanish
// mid-walk or cannot be read are recorded with the empty-hash sentinel; a
// partial best-effort fingerprint beats failing outright.
func (f *Fingerprinter) collect(root string) []domain.FileRecord {
	var records []domain.FileRecord

	for path := range f.walker.WalkFiles(root) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		rec := domain.FileRecord{Path: rel}
		if info, err := os.Stat(path); err == nil {
			rec.Size = info.Size()
			rec.ModTime = info.ModTime()
		}

		hash, err := hashFile(path)
		if err != nil {
			f.logger.Warn(fmt.Sprintf("unreadable file %s: %v", rel, err), "fingerprint")
		} else {
			rec.ContentHash = hash
		}

		records = append(records, rec)
	}
	return records
}

// hashFile computes the hex SHA-256 of a file's content.
func hashFile(path string) (string, error) {
	file, err := os.Open(path) //nolint:gosec // Path comes from the walker
	if err != nil {
		return "", zerr.Wrap(err, "failed to open file")
	}
	defer file.Close() //nolint:errcheck // Best effort close in defer

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", zerr.Wrap(err, "failed to hash file content")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
