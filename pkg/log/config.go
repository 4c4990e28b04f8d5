package log

import (
	"fmt"
	"strings"
)

// Config defines logging configuration.
type Config struct {
	// Level sets the minimum log level
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format sets the output format (text, json)
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output is "stdout", "stderr" or a file path
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// MaxSizeMB rotates file output once it reaches this size
	MaxSizeMB int `json:"maxSizeMB" yaml:"maxSizeMB" mapstructure:"maxSizeMB"`

	// MaxBackups bounds the number of rotated files kept
	MaxBackups int `json:"maxBackups" yaml:"maxBackups" mapstructure:"maxBackups"`

	// NoColor disables colors in text output
	NoColor bool `json:"noColor" yaml:"noColor" mapstructure:"noColor"`

	// EnableCaller records file and line
	EnableCaller bool `json:"enableCaller" yaml:"enableCaller" mapstructure:"enableCaller"`

	// RedactedFields lists field keys whose values are never written
	RedactedFields []string `json:"redactedFields" yaml:"redactedFields" mapstructure:"redactedFields"`
}

// DefaultConfig returns text output at info level on the console.
func DefaultConfig() Config {
	return Config{
		Level:          "info",
		Format:         "text",
		Output:         "stdout",
		MaxSizeMB:      10,
		MaxBackups:     5,
		RedactedFields: append([]string(nil), DefaultRedactedFields...),
	}
}

// ApplyConfig creates a logger from a configuration.
func ApplyConfig(cfg Config) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	options := []LoggerOption{WithLevel(level)}

	switch strings.ToLower(cfg.Format) {
	case "json":
		options = append(options, WithFormatter(&JSONFormatter{}))
	case "text", "":
		f := NewTextFormatter()
		f.DisableColors = cfg.NoColor
		options = append(options, WithFormatter(f))
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	switch cfg.Output {
	case "", "stdout":
		options = append(options, WithOutput(NewConsoleOutput()))
	case "stderr":
		options = append(options, WithOutput(NewConsoleOutput(WithStderr())))
	default:
		options = append(options, WithOutput(NewFileOutput(cfg.Output, int64(cfg.MaxSizeMB)*1024*1024, cfg.MaxBackups)))
	}

	if cfg.EnableCaller {
		options = append(options, WithCaller())
	}
	if len(cfg.RedactedFields) > 0 {
		options = append(options, WithHook(NewRedactionHook(cfg.RedactedFields)))
	}

	return NewLogger(options...), nil
}
