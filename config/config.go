// Package config loads host configuration for the resource manager.
//
// Configuration comes from a single YAML file named by the -config flag or,
// when no flag is given, by the XRSC_CONFIG environment variable. With
// neither set the defaults apply. There is no other discovery.
package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/xresource/errors"
	"github.com/wippyai/xresource/resource"
)

// EnvVar names the configuration file when no explicit path is given.
const EnvVar = "XRSC_CONFIG"

// Config is the host configuration.
type Config struct {
	// Capacity is the maximum number of live resource instances.
	// Default: 1000
	Capacity int `yaml:"capacity"`

	// DebugChecks makes invariant violations panic and reports leaked
	// references at shutdown.
	DebugChecks bool `yaml:"debug_checks"`

	Log LogConfig `yaml:"log"`

	Resources ResourcesConfig `yaml:"resources"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is "console" or "json".
	// Default: console
	Format string `yaml:"format"`
}

// ResourcesConfig locates resource files on disk.
type ResourcesConfig struct {
	// Root is the directory resource files are resolved against.
	// ${HOME} and other environment variables are expanded.
	Root string `yaml:"root"`

	// Extension is appended to resolved module file names.
	// Default: .wasm
	Extension string `yaml:"extension"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Capacity: resource.DefaultCapacity,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Resources: ResourcesConfig{
			Root:      ".",
			Extension: ".wasm",
		},
	}
}

// Load loads the file at path, or the file named by XRSC_CONFIG when path is
// empty. With neither, it returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads and validates configuration from a specific file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Config("open "+path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Config("decode yaml", err)
	}
	cfg.Resources.Root = os.ExpandEnv(cfg.Resources.Root)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		return errors.Config(fmt.Sprintf("capacity must be positive, got %d", c.Capacity), nil)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.Config(fmt.Sprintf("unknown log format %q", c.Log.Format), nil)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Config("log level", err)
	}
	if c.Resources.Extension != "" && c.Resources.Extension[0] != '.' {
		return errors.Config(fmt.Sprintf("resource extension %q must start with a dot", c.Resources.Extension), nil)
	}
	return nil
}

// Logger builds a zap logger from the log section.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Config("log level", err)
	}

	zc := zap.NewDevelopmentConfig()
	if c.Log.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// ManagerOptions returns the manager options this configuration implies.
func (c *Config) ManagerOptions(log *zap.Logger) []resource.Option {
	return []resource.Option{
		resource.WithLogger(log),
		resource.WithDebugChecks(c.DebugChecks),
	}
}
