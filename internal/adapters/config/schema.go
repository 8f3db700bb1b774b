package config

// Stashfile represents the structure of the stash.yaml configuration file.
type Stashfile struct {
	Version    string                  `yaml:"version"`
	Cache      CacheDTO                `yaml:"cache"`
	Operations map[string]OperationDTO `yaml:"operations"`
}

// CacheDTO represents the cache section. Every field is optional; zero
// values fall back to the defaults.
type CacheDTO struct {
	Dir          string `yaml:"dir"`
	MemoryTTL    string `yaml:"memoryTTL"`
	DiskTTL      string `yaml:"diskTTL"`
	MaxAgeDays   int    `yaml:"maxAgeDays"`
	Differential *bool  `yaml:"differential"`
}

// OperationDTO represents one analysis operation definition.
type OperationDTO struct {
	Cmd    []string          `yaml:"cmd"`
	Params map[string]string `yaml:"params"`
}
