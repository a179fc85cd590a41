// Package config provides configuration loading for pydocjson.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Command-line flags (applied by the cli package)
//  2. Environment variables (PYDOCJSON_*)
//  3. Project config (.pydocjson/config.yml, or the file given with --config)
//  4. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: PYDOCJSON_
//   - Nested fields: use underscores (PYDOCJSON_RENDER_LINE_LENGTH)
//   - Lists are comma separated (PYDOCJSON_PRIVACY="HIDDEN:pkg.tests.**,PRIVATE:pkg._impl")
package config

// Config represents the complete pydocjson configuration.
// It can be loaded from .pydocjson/config.yml with environment variable overrides.
type Config struct {
	Project ProjectConfig `yaml:"project" mapstructure:"project"`
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`
	Privacy []string      `yaml:"privacy" mapstructure:"privacy"` // "CLASS:pattern" rules, last match wins
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
}

// ProjectConfig locates the project.
type ProjectConfig struct {
	BaseDirectory string `yaml:"base_directory" mapstructure:"base_directory"` // empty means the working directory
}

// PathsConfig defines which Python files are documented.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for modules
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// RenderConfig limits how attribute values are rendered.
type RenderConfig struct {
	LineLength int `yaml:"line_length" mapstructure:"line_length"` // 0 disables wrapping
	MaxLines   int `yaml:"max_lines" mapstructure:"max_lines"`     // 0 disables truncation
}

// OutputConfig defines where the JSON is written.
type OutputConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{"**/*.py"},
			Ignore: []string{
				"**/__pycache__/**",
				"**/.*/**",
				"**/node_modules/**",
			},
		},
		Render: RenderConfig{
			LineLength: 80,
			MaxLines:   7,
		},
		Privacy: []string{},
		Output: OutputConfig{
			File: "docs.json",
		},
	}
}
