// Package config loads the tool configuration from YAML and turns it
// into the rule configuration of the core.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/beamertools/sngward/core/errors"
	"github.com/beamertools/sngward/core/sng"
	"github.com/beamertools/sngward/core/songbook"
)

// Config is the on-disk tool configuration. Zero or missing fields fall
// back to the built-in defaults.
type Config struct {
	// Directory is the root of the song collection folders.
	Directory string `yaml:"directory"`

	// LogLevel and LogFormat configure the logger (debug/info/warn/error,
	// text/json).
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// MaxSlideLines is the slide line count enforced by the reformatter.
	MaxSlideLines int `yaml:"max_slide_lines"`

	// PsalmBackground is the reference background image for psalms.
	PsalmBackground string `yaml:"psalm_background"`

	// EditorStamp overwrites the Editor header of modified songs. Empty
	// keeps the dated default.
	EditorStamp string `yaml:"editor_stamp"`

	RequiredHeaders []string `yaml:"required_headers"`
	IllegalHeaders  []string `yaml:"illegal_headers"`

	Songbook SongbookConfig `yaml:"songbook"`
	Report   ReportConfig   `yaml:"report"`
	Backup   BackupConfig   `yaml:"backup"`
}

// SongbookConfig overrides the catalog policy tables.
type SongbookConfig struct {
	Prefixes       []string                  `yaml:"prefixes"`
	KnownPrefixes  []string                  `yaml:"known_prefixes"`
	PsalmRanges    map[string]songbook.Range `yaml:"psalm_ranges"`
	FolderPrefixes map[string]string         `yaml:"folder_prefixes"`
}

// ReportConfig configures the findings database.
type ReportConfig struct {
	// Path is the SQLite database file. Empty disables reporting.
	Path string `yaml:"path"`
}

// BackupConfig configures pre-write backups.
type BackupConfig struct {
	// Enabled turns backup archives on before any write-back run.
	Enabled bool `yaml:"enabled"`

	// Directory receives the tar.xz archives.
	Directory string `yaml:"directory"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads a YAML configuration file on top of the defaults. A
// missing path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read config", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// Rules builds the core rule configuration, overlaying any overrides
// onto the defaults.
func (c *Config) Rules() *sng.Config {
	rules := sng.DefaultConfig()

	if c.MaxSlideLines > 0 {
		rules.MaxSlideLines = c.MaxSlideLines
	}
	if c.PsalmBackground != "" {
		rules.PsalmBackground = c.PsalmBackground
	}
	if c.EditorStamp != "" {
		rules.EditorStamp = c.EditorStamp
	}
	if len(c.RequiredHeaders) > 0 {
		rules.RequiredHeaders = c.RequiredHeaders
	}
	if len(c.IllegalHeaders) > 0 {
		rules.IllegalHeaders = c.IllegalHeaders
	}
	rules.Songbook = c.policy()
	return rules
}

func (c *Config) policy() *songbook.Policy {
	def := songbook.DefaultPolicy()
	sb := c.Songbook

	prefixes := sb.Prefixes
	if prefixes == nil {
		prefixes = def.Prefixes
	}
	known := sb.KnownPrefixes
	if known == nil {
		known = def.KnownPrefixes
	}
	ranges := sb.PsalmRanges
	if ranges == nil {
		ranges = def.PsalmRanges
	}
	folders := sb.FolderPrefixes
	if folders == nil {
		folders = def.FolderPrefixes
	}
	return songbook.NewPolicy(prefixes, known, ranges, folders)
}
