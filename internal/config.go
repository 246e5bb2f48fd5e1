package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notesearch/internal/engine"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Input   InputConfig       `yaml:"input"`
	Index   IndexConfig       `yaml:"index"`
	Metrics MetricsConfig     `yaml:"metrics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Index.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	)
}

// InputConfig selects the command stream.
//
// Path "" or "-" reads standard input. Follow keeps reading a file as it
// grows instead of stopping at its end.
type InputConfig struct {
	Path   string `yaml:"path"`
	Follow bool   `yaml:"follow"`
}

// IndexConfig holds engine configuration.
type IndexConfig struct {
	DuplicatePolicy string `yaml:"duplicate_policy"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	if c.DuplicatePolicy == "" {
		c.DuplicatePolicy = string(engine.DuplicateReject)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.DuplicatePolicy,
			validation.In(string(engine.DuplicateReject), string(engine.DuplicateReplace))),
	)
}

// MetricsConfig holds metrics configuration. When Textfile is set the
// collectors are written there on shutdown.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
		},
		Input: InputConfig{
			Path: "-",
		},
		Index: IndexConfig{
			DuplicatePolicy: string(engine.DuplicateReject),
		},
	}
}
