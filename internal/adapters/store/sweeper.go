package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/zerr"
)

// Sweep removes persisted entries whose file modification age exceeds
// maxAge, and index records older than the same cutoff. Per-item
// failures (already removed, locked) are skipped; the sweep itself only
// fails when the entries directory cannot be listed. Runs on demand,
// never on a timer.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	dirents, err := os.ReadDir(s.disk.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Nothing persisted yet; still prune the index below.
			dirents = nil
		} else {
			return 0, zerr.Wrap(err, "failed to list cache entries")
		}
	}

	for _, dirent := range dirents {
		if dirent.IsDir() || filepath.Ext(dirent.Name()) != ".json" {
			continue
		}
		info, err := dirent.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.disk.dir, dirent.Name())); err != nil {
			s.logger.Warn(fmt.Sprintf("sweep could not remove %s: %v", dirent.Name(), err), "sweep")
			continue
		}
		removed++
	}

	// Swept entries must not linger in the memory tier either.
	s.memory.removeOlderThan(cutoff)

	pruned, err := s.index.prune(cutoff)
	if err != nil {
		s.logger.Warn(err.Error(), "sweep")
	}

	s.logger.Info(fmt.Sprintf("sweep removed %d entries and %d index records", removed, pruned), "sweep")
	return removed, nil
}
