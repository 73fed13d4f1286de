package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	shellquote "github.com/kballard/go-shellquote"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	AppName              = "create-sandbox"
	DefaultBuildScript   = "build"
	DefaultGenerator     = "npx create-react-app"
	DefaultSandboxSuffix = "-sandbox"
	DefaultConfigFile    = "config.toml"

	// EnvPrefix is the prefix of environment overrides, e.g. CREATE_SANDBOX_TIMEOUT.
	EnvPrefix = "CREATE_SANDBOX_"
)

// directoryNameRegex matches names that are safe as a single path segment.
var directoryNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,213}$`)

// ValidateDirectoryName checks that name can be used as a directory directly
// under the working directory.
// Valid names:
//   - Start with a letter or digit
//   - Contain only letters, digits, dots, underscores, or hyphens
//   - Are at most 214 characters long (npm package name limit)
func ValidateDirectoryName(name string) error {
	if name == "" {
		return fmt.Errorf("directory name cannot be empty")
	}

	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid directory name %q: must be a single path segment", name)
	}

	if !directoryNameRegex.MatchString(name) {
		return fmt.Errorf("invalid directory name %q: must start with a letter or digit and contain only letters, digits, dots, underscores, or hyphens", name)
	}

	return nil
}

// Config holds the tunables of a sandbox run.
type Config struct {
	// BuildScript is the package script run to build the source package.
	BuildScript string `toml:"build_script" yaml:"build_script" mapstructure:"build_script"`

	// Generator is the command line that generates the sandbox app.
	Generator string `toml:"generator" yaml:"generator" mapstructure:"generator"`

	// Timeout bounds every external command. Zero means no limit.
	Timeout Duration `toml:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// SandboxSuffix is appended to the directory name to name the sandbox.
	SandboxSuffix string `toml:"sandbox_suffix" yaml:"sandbox_suffix" mapstructure:"sandbox_suffix"`
}

// Duration is a time.Duration that decodes from strings like "5m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler (used by toml).
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BuildScript:   DefaultBuildScript,
		Generator:     DefaultGenerator,
		SandboxSuffix: DefaultSandboxSuffix,
	}
}

// Validate checks that the Config is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BuildScript) == "" {
		return fmt.Errorf("build_script is required")
	}

	if _, err := c.GeneratorArgv(); err != nil {
		return err
	}

	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout must not be negative (got %s)", c.Timeout.Duration)
	}

	if c.SandboxSuffix == "" {
		return fmt.Errorf("sandbox_suffix is required")
	}
	if strings.ContainsAny(c.SandboxSuffix, `/\`) {
		return fmt.Errorf("sandbox_suffix must not contain path separators (got %q)", c.SandboxSuffix)
	}

	return nil
}

// GeneratorArgv splits Generator into a program name and its arguments.
func (c *Config) GeneratorArgv() ([]string, error) {
	argv, err := shellquote.Split(c.Generator)
	if err != nil {
		return nil, fmt.Errorf("invalid generator %q: %w", c.Generator, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("generator is required")
	}
	return argv, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/create-sandbox/config.toml,
// falling back to the OS user config directory.
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return ""
		}
	}
	return filepath.Join(dir, AppName, DefaultConfigFile)
}

// LoadFile merges the configuration file at path into c.
// The format is chosen by extension: .toml, .yaml or .yml.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(c); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}

	return nil
}

// FromEnv merges CREATE_SANDBOX_* variables from environ into c.
// environ uses the os.Environ format.
func (c *Config) FromEnv(environ []string) error {
	values := make(map[string]interface{})
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		values[strings.ToLower(strings.TrimPrefix(key, EnvPrefix))] = value
	}
	if len(values) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringToDurationHook,
		Result:     c,
	})
	if err != nil {
		return fmt.Errorf("failed to create env decoder: %w", err)
	}

	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("invalid environment configuration: %w", err)
	}
	return nil
}

var durationType = reflect.TypeOf(Duration{})

// stringToDurationHook lets mapstructure fill Duration fields from strings.
func stringToDurationHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != durationType {
		return data, nil
	}
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	var d Duration
	if err := d.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	return d, nil
}

// Load builds the effective configuration: defaults, then the file at path
// (or the default config file when path is empty and that file exists),
// then environment overrides.
func Load(path string, environ []string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if p := DefaultConfigPath(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.FromEnv(environ); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
