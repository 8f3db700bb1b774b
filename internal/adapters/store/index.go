package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/zerr"
)

// index is the key→metadata document backing statistics. It is a single
// JSON file rewritten wholesale on every update; get/set correctness
// never depends on it.
type index struct {
	path    string
	records map[domain.CacheKey]domain.IndexRecord
}

// newIndex loads the index document. A malformed document is treated as
// empty and rebuilt incrementally; the returned error reports why so the
// caller can log it.
func newIndex(path string) (*index, error) {
	idx := &index{
		path:    filepath.Clean(path),
		records: make(map[domain.CacheKey]domain.IndexRecord),
	}

	//nolint:gosec // Path is fixed under the cache root
	data, err := os.ReadFile(idx.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return idx, nil
		}
		return idx, zerr.Wrap(err, "failed to read cache index")
	}
	if len(data) == 0 {
		return idx, nil
	}

	if err := json.Unmarshal(data, &idx.records); err != nil {
		idx.records = make(map[domain.CacheKey]domain.IndexRecord)
		return idx, zerr.Wrap(err, "malformed cache index, starting empty")
	}
	return idx, nil
}

func (i *index) save() error {
	data, err := json.MarshalIndent(i.records, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache index")
	}

	if err := os.MkdirAll(filepath.Dir(i.path), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for cache index")
	}

	//nolint:gosec // Path is fixed under the cache root
	if err := os.WriteFile(i.path, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write cache index")
	}
	return nil
}

func (i *index) put(rec domain.IndexRecord) error {
	i.records[rec.Key] = rec
	return i.save()
}

func (i *index) delete(key domain.CacheKey) error {
	if _, ok := i.records[key]; !ok {
		return nil
	}
	delete(i.records, key)
	return i.save()
}

// snapshot returns a copy of all records.
func (i *index) snapshot() []domain.IndexRecord {
	out := make([]domain.IndexRecord, 0, len(i.records))
	for _, rec := range i.records {
		out = append(out, rec)
	}
	return out
}

// findStale returns the newest key sharing the scope under a fingerprint
// other than current.
func (i *index) findStale(scope string, current domain.Fingerprint) (domain.CacheKey, bool) {
	var (
		bestKey domain.CacheKey
		bestAt  time.Time
		found   bool
	)
	for key, rec := range i.records {
		if key.Scope() != scope || key.Fingerprint() == current {
			continue
		}
		if !found || rec.CreatedAt.After(bestAt) {
			bestKey, bestAt, found = key, rec.CreatedAt, true
		}
	}
	return bestKey, found
}

// prune drops records created before the cutoff and saves once.
func (i *index) prune(cutoff time.Time) (int, error) {
	removed := 0
	for key, rec := range i.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(i.records, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, i.save()
}
