// Package ftsconfig loads the query engine's configuration, following the
// teacher's apoc.Config YAML-plus-env-override shape (apoc/config.go).
package ftsconfig

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config controls tokenizer parameters, scoring plug-ins, the validation
// pipeline's thresholds, and the badger-backed inverted file location.
type Config struct {
	// DataDir is the badger data directory for the inverted file,
	// document-length file, and index metadata.
	DataDir string `yaml:"data_dir"`

	// Tokenizer is the tokenizer description string, per §6.3's grammar
	// (e.g. "ngram:1:2 @NORMRSCID:5" or "blocked:JAP:ALL:2 ...").
	Tokenizer string `yaml:"tokenizer"`

	// IndexingType is one of "ngram", "word", "dual".
	IndexingType string `yaml:"indexing_type"`

	// ScoreCalculator names the default ScoreCalculator plug-in
	// (e.g. "bm25", "tfidf", "unit").
	ScoreCalculator string `yaml:"score_calculator"`

	// ScoreCombiner names the default ScoreCombiner plug-in for ranking
	// internal nodes (e.g. "sum", "max").
	ScoreCombiner string `yaml:"score_combiner"`

	// OrFlattenThreshold caps OR fan-in during the flatten pass (§4.3 step 5).
	OrFlattenThreshold int `yaml:"or_flatten_threshold"`

	// ShortWordRangeLimit bounds how many index keys a short-word range
	// scan collects; keys past the limit are left out of the term's
	// AtomicOr expansion.
	ShortWordRangeLimit int `yaml:"short_word_range_limit"`

	// Cache controls the validated-query-plan cache.
	Cache CacheConfig `yaml:"cache"`

	// LogLevel is the minimum severity ("debug", "info", "warn", "error")
	// the per-query/per-reader ftslog.Logger instances emit at.
	LogLevel string `yaml:"log_level"`
}

// CacheConfig controls the validated-tree cache (internal/qcache).
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries"`
	TTLSeconds int `yaml:"ttl_seconds"`
	Enabled    bool `yaml:"enabled"`
}

// Default returns a configuration with conservative defaults (1..2-gram
// tokenizer, BM25 calculator, sum combiner).
func Default() *Config {
	return &Config{
		DataDir:             "./ftsdata",
		Tokenizer:           "ngram:1:2",
		IndexingType:        "ngram",
		ScoreCalculator:     "bm25",
		ScoreCombiner:       "sum",
		OrFlattenThreshold:  256,
		ShortWordRangeLimit: 10000,
		Cache: CacheConfig{
			MaxEntries: 1000,
			TTLSeconds: 300,
			Enabled:    true,
		},
		LogLevel: "info",
	}
}

// Load reads a YAML configuration file, falling back to Default() values
// for unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns Default() if the file
// does not exist or fails to parse.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// ApplyEnv overrides fields from FTSEARCH_* environment variables, taking
// precedence over file-loaded values, mirroring apoc.Config's env-override
// pass.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("FTSEARCH_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("FTSEARCH_TOKENIZER"); v != "" {
		c.Tokenizer = v
	}
	if v := os.Getenv("FTSEARCH_INDEXING_TYPE"); v != "" {
		c.IndexingType = v
	}
	if v := os.Getenv("FTSEARCH_SCORE_CALCULATOR"); v != "" {
		c.ScoreCalculator = v
	}
	if v := os.Getenv("FTSEARCH_SCORE_COMBINER"); v != "" {
		c.ScoreCombiner = v
	}
	if v := os.Getenv("FTSEARCH_OR_FLATTEN_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.OrFlattenThreshold = n
		}
	}
	if v := os.Getenv("FTSEARCH_CACHE_ENABLED"); v != "" {
		c.Cache.Enabled = parseBool(v, c.Cache.Enabled)
	}
	if v := os.Getenv("FTSEARCH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func parseBool(s string, defaultVal bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultVal
	}
}
