// Package config loads geofeat settings from a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/geofeat/dataset"
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/mapper"
	"gopkg.in/yaml.v3"
)

// Config is the file configuration of a workspace.
type Config struct {
	// Database is the SQLite file path.
	Database  string `yaml:"database"`
	Mapper    string `yaml:"mapper"`
	ChangeLog bool   `yaml:"change_log"`
	Lenient   bool   `yaml:"lenient"`
	Log       Log    `yaml:"log"`

	// Datasets holds per-dataset overrides keyed by dataset name.
	Datasets map[string]Dataset `yaml:"datasets"`

	dir string
}

// Log configures the dataset logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Dataset overrides workspace defaults for one dataset.
type Dataset struct {
	Mapper  string `yaml:"mapper"`
	Lenient *bool  `yaml:"lenient"`
	// Schema is a JSON Schema document, inline or as a path relative to the
	// config file.
	Schema string `yaml:"schema"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: "geofeat.sqlite",
		Mapper:   mapper.NameEnvelope,
		Log:      Log{Level: "info", Format: "text"},
	}
}

// Load reads and validates a YAML configuration file. Unset fields keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	if cfg.Database != "" && cfg.Database != ":memory:" && !filepath.IsAbs(cfg.Database) {
		cfg.Database = filepath.Join(cfg.dir, cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks mapper names and the log level.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("config: database is required")
	}
	if _, err := mapper.ByName(c.Mapper); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for name, ds := range c.Datasets {
		if _, err := mapper.ByName(ds.Mapper); ds.Mapper != "" && err != nil {
			return fmt.Errorf("config: dataset %s: %w", name, err)
		}
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	return nil
}

// Logger builds the dataset logger described by Log.
func (c *Config) Logger() *dataset.Logger {
	level, _ := c.Log.level()
	if strings.EqualFold(c.Log.Format, "json") {
		return dataset.NewJSONLogger(level)
	}
	return dataset.NewTextLogger(level)
}

// WorkspaceOptions returns the workspace-wide dataset defaults.
func (c *Config) WorkspaceOptions() []dataset.Option {
	m, _ := mapper.ByName(c.Mapper)
	return []dataset.Option{
		dataset.WithMapper(m),
		dataset.WithLenient(c.Lenient),
		dataset.WithChangeLog(c.ChangeLog),
		dataset.WithLogger(c.Logger()),
	}
}

// DatasetOptions returns the overrides configured for name.
func (c *Config) DatasetOptions(name string) ([]dataset.Option, error) {
	ds, ok := c.Datasets[name]
	if !ok {
		return nil, nil
	}
	var opts []dataset.Option
	if ds.Mapper != "" {
		m, err := mapper.ByName(ds.Mapper)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dataset.WithMapper(m))
	}
	if ds.Lenient != nil {
		opts = append(opts, dataset.WithLenient(*ds.Lenient))
	}
	if ds.Schema != "" {
		definition, err := c.schemaDefinition(ds.Schema)
		if err != nil {
			return nil, fmt.Errorf("config: dataset %s: %w", name, err)
		}
		schema, err := feature.NewSchema(name, definition)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dataset.WithSchema(schema))
	}
	return opts, nil
}

func (c *Config) schemaDefinition(value string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(value), "{") {
		return value, nil
	}
	path := value
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read schema: %w", err)
	}
	return string(data), nil
}

func (l Log) level() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", l.Level, err)
	}
	return level, nil
}
