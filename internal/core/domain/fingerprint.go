// Package domain contains the core types for the analysis cache.
package domain

import "time"

// EmptyFingerprint is the digest of a project with no included files
// (SHA-256 of zero bytes). A fingerprint equal to this value is still a
// valid cache namespace; an empty project is cacheable like any other.
const EmptyFingerprint Fingerprint = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Fingerprint is a fixed-length hex digest summarizing the content of an
// entire project tree. Identical file sets with identical contents always
// produce the identical fingerprint, independent of walk order.
type Fingerprint string

// String returns the full hex digest.
func (f Fingerprint) String() string {
	return string(f)
}

// Short returns a truncated digest for log lines and display.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

// FileRecord describes one included file during a single fingerprint
// computation. Records are never persisted; they exist only to build the
// canonical fold.
type FileRecord struct {
	// Path is the file path relative to the project root, with forward
	// slashes regardless of platform.
	Path string
	// Size is the file size in bytes at stat time.
	Size int64
	// ModTime is the modification time at stat time. It is informational
	// only and excluded from the fingerprint fold, so touching a file
	// without changing its content does not change the fingerprint.
	ModTime time.Time
	// ContentHash is the hex SHA-256 of the file content, or empty when
	// the file could not be read (the unreadable-file sentinel).
	ContentHash string
}
