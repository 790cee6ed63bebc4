package threadpool

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format is a config encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	ErrUnsupportedFormat = errors.New("threadpool: unsupported config format")
	ErrInvalidConfig     = errors.New("threadpool: invalid config")
)

// Config is the file-loadable subset of pool settings.
type Config struct {
	Workers      int    `koanf:"workers"`
	Name         string `koanf:"name"`
	LogAllErrors bool   `koanf:"log_all_errors"`
}

// DefaultConfig returns one worker per CPU.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.NumCPU(),
	}
}

// LoadConfig parses data over DefaultConfig. Keys missing from data keep
// their default value.
func LoadConfig(data []byte, format Format) (Config, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return Config{}, fmt.Errorf("threadpool: parse config: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("threadpool: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads path and picks the format from its extension.
func LoadConfigFile(path string) (Config, error) {
	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json":
		format = FormatJSON
	default:
		return Config{}, fmt.Errorf("%w: extension of %s", ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("threadpool: read config: %w", err)
	}
	return LoadConfig(data, format)
}

// Validate rejects a negative worker count with ErrInvalidConfig.
// Zero workers is accepted.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Options converts c into pool options.
func (c Config) Options() []Option {
	return []Option{
		WithName(c.Name),
		WithLogAllErrors(c.LogAllErrors),
	}
}

// NewFromConfig starts a pool from c; opts are applied after c's own options.
func NewFromConfig(c Config, opts ...Option) (*ThreadPool, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return New(c.Workers, append(c.Options(), opts...)...), nil
}
