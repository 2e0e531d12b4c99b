// Package config loads opskb settings. Precedence, lowest to highest:
// built-in defaults, the user config file (~/.config/opskb/config.yaml),
// then OPSKB_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	kberrors "github.com/opskb/opskb/internal/errors"
)

// Config is the complete opskb configuration.
type Config struct {
	// DataDir holds the database, ingest lock and derived files.
	DataDir string `yaml:"data_dir"`

	Chunking ChunkingConfig `yaml:"chunking"`
	Answer   AnswerConfig   `yaml:"answer"`
	Logging  LoggingConfig  `yaml:"logging"`
	Watch    WatchConfig    `yaml:"watch"`
}

// ChunkingConfig tunes the ingestion chunker.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// AnswerConfig tunes the answer engine.
type AnswerConfig struct {
	// Limit is the default number of matches per question.
	Limit int `yaml:"limit"`
}

// LoggingConfig mirrors the logging package's options.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	FilePath  string `yaml:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// WatchConfig tunes the corpus watcher.
type WatchConfig struct {
	// Debounce is how long to wait after the last filesystem event before
	// re-ingesting, e.g. "2s".
	Debounce string `yaml:"debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Chunking: ChunkingConfig{
			Size:    800,
			Overlap: 80,
		},
		Answer: AnswerConfig{
			Limit: 3,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
		Watch: WatchConfig{
			Debounce: "2s",
		},
	}
}

// DefaultPath is the user config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "opskb", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "opskb", "config.yaml")
	}
	return filepath.Join(home, ".config", "opskb", "config.yaml")
}

// DatabasePath returns the SQLite database location under the data dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "opskb.db")
}

// Load reads the config at path (DefaultPath when empty), applies defaults
// for unset fields and then environment overrides. A missing file is fine;
// a file that exists but does not parse is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, kberrors.Wrap(kberrors.ErrCodeConfigInvalid,
				"parse config file", err).WithDetail("path", path)
		}
	case os.IsNotExist(err):
		if explicit {
			return nil, kberrors.New(kberrors.ErrCodeConfigNotFound,
				"config file does not exist").WithDetail("path", path)
		}
	default:
		return nil, kberrors.Wrap(kberrors.ErrCodeConfigInvalid,
			"read config file", err).WithDetail("path", path)
	}

	applyEnv(cfg)
	fillDefaults(cfg)
	return cfg, nil
}

// applyEnv overrides config fields from OPSKB_* variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("OPSKB_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("OPSKB_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := envInt("OPSKB_CHUNK_SIZE"); ok {
		cfg.Chunking.Size = v
	}
	if v, ok := envInt("OPSKB_CHUNK_OVERLAP"); ok {
		cfg.Chunking.Overlap = v
	}
	if v, ok := envInt("OPSKB_ANSWER_LIMIT"); ok {
		cfg.Answer.Limit = v
	}
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// fillDefaults repairs zero or nonsensical values after file and env
// merging.
func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.Chunking.Size <= 0 {
		cfg.Chunking.Size = def.Chunking.Size
	}
	if cfg.Chunking.Overlap < 0 {
		cfg.Chunking.Overlap = def.Chunking.Overlap
	}
	if cfg.Answer.Limit <= 0 {
		cfg.Answer.Limit = def.Answer.Limit
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.MaxSizeMB <= 0 {
		cfg.Logging.MaxSizeMB = def.Logging.MaxSizeMB
	}
	if cfg.Logging.MaxFiles <= 0 {
		cfg.Logging.MaxFiles = def.Logging.MaxFiles
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = def.Watch.Debounce
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".opskb")
	}
	return filepath.Join(home, ".opskb")
}
