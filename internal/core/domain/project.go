package domain

import "time"

// CacheSettings holds the tunable behavior of one cache instance.
type CacheSettings struct {
	// Dir is the cache root directory, relative to the project root
	// unless absolute. Entries live under Dir/entries, the index at
	// Dir/index.json.
	Dir string
	// MemoryTTL bounds the age of entries served from the memory tier.
	MemoryTTL time.Duration
	// DiskTTL bounds the age of entries served from the disk tier.
	// Expected to be much larger than MemoryTTL.
	DiskTTL time.Duration
	// MaxAgeDays is the sweep threshold for persisted entries.
	MaxAgeDays int
	// Differential opts lookups into stale-entry reuse after a
	// fingerprint change. Off by default: a mismatch is a true miss.
	Differential bool
}

// MaxAge returns the sweep threshold as a duration.
func (s CacheSettings) MaxAge() time.Duration {
	return time.Duration(s.MaxAgeDays) * 24 * time.Hour
}

// DefaultCacheSettings returns the settings used when configuration omits
// the cache section: minutes in memory, days on disk.
func DefaultCacheSettings() CacheSettings {
	return CacheSettings{
		Dir:        ".stash",
		MemoryTTL:  5 * time.Minute,
		DiskTTL:    7 * 24 * time.Hour,
		MaxAgeDays: 30,
	}
}

// OperationSpec describes one configured analysis operation: the external
// command that produces the expensive result, plus the parameter bundle
// that distinguishes cache keys for the same command.
type OperationSpec struct {
	Name   string
	Cmd    []string
	Params map[string]string
}

// Project is the loaded configuration for one project tree.
type Project struct {
	Root       string
	Cache      CacheSettings
	Operations map[string]OperationSpec
}

// Operation looks up a configured operation by name.
func (p *Project) Operation(name string) (OperationSpec, bool) {
	spec, ok := p.Operations[name]
	return spec, ok
}
