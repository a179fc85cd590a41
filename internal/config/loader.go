package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

// LoaderOption customizes a Loader.
type LoaderOption func(*loader)

// WithConfigFile reads configuration from path instead of searching
// .pydocjson/ under the root directory. The file must exist.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) {
		l.configFile = path
	}
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{
		rootDir: rootDir,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (PYDOCJSON_*)
// 2. Config file (.pydocjson/config.yml or .pydocjson/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".pydocjson"))
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("PYDOCJSON")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., PYDOCJSON_RENDER_MAX_LINES)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVars(v)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("project.base_directory")
	v.BindEnv("paths.include")
	v.BindEnv("paths.ignore")
	v.BindEnv("render.line_length")
	v.BindEnv("render.max_lines")
	v.BindEnv("privacy")
	v.BindEnv("output.file")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("project.base_directory", defaults.Project.BaseDirectory)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("render.line_length", defaults.Render.LineLength)
	v.SetDefault("render.max_lines", defaults.Render.MaxLines)

	v.SetDefault("privacy", defaults.Privacy)

	v.SetDefault("output.file", defaults.Output.File)
}

