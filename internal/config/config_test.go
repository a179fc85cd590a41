package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/pydocjson/internal/model"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() loads from .pydocjson/config.yml and .pydocjson/config.yaml
// - Load() merges a partial config file with defaults
// - Load() reads an explicit config file and fails when it is missing
// - Environment variables override config file values and defaults
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects negative render limits, bad privacy rules,
//   bad globs and an empty output file
// - Validate() reports every problem at once
// - ToEngineOptions() resolves the base directory and parses privacy rules
// - OutputPath() resolves relative paths against the working directory

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".pydocjson")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "", cfg.Project.BaseDirectory)
	assert.Equal(t, []string{"**/*.py"}, cfg.Paths.Include)
	assert.Equal(t, []string{"**/__pycache__/**", "**/.*/**", "**/node_modules/**"}, cfg.Paths.Ignore)
	assert.Equal(t, 80, cfg.Render.LineLength)
	assert.Equal(t, 7, cfg.Render.MaxLines)
	assert.Empty(t, cfg.Privacy)
	assert.Equal(t, "docs.json", cfg.Output.File)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()

	require.NoError(t, err)
	defaults := Default()
	assert.Equal(t, defaults.Paths, cfg.Paths)
	assert.Equal(t, defaults.Render, cfg.Render)
	assert.Equal(t, defaults.Output, cfg.Output)
	assert.Empty(t, cfg.Privacy)
}

func TestLoadConfig_LoadsFromConfigFile(t *testing.T) {
	t.Parallel()

	content := `
project:
  base_directory: src
paths:
  include:
    - "pkg/**/*.py"
  ignore:
    - "**/tests/**"
render:
  line_length: 100
  max_lines: 3
privacy:
  - "HIDDEN:pkg.tests.**"
  - "PRIVATE:pkg._impl"
output:
  file: out/api.json
`

	for _, name := range []string{"config.yml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, name, content)

			cfg, err := NewLoader(dir).Load()
			require.NoError(t, err)

			assert.Equal(t, "src", cfg.Project.BaseDirectory)
			assert.Equal(t, []string{"pkg/**/*.py"}, cfg.Paths.Include)
			assert.Equal(t, []string{"**/tests/**"}, cfg.Paths.Ignore)
			assert.Equal(t, 100, cfg.Render.LineLength)
			assert.Equal(t, 3, cfg.Render.MaxLines)
			assert.Equal(t, []string{"HIDDEN:pkg.tests.**", "PRIVATE:pkg._impl"}, cfg.Privacy)
			assert.Equal(t, "out/api.json", cfg.Output.File)
		})
	}
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "render:\n  max_lines: 0\n")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Render.MaxLines)
	assert.Equal(t, 80, cfg.Render.LineLength)
	assert.Equal(t, Default().Paths.Include, cfg.Paths.Include)
	assert.Equal(t, "docs.json", cfg.Output.File)
}

func TestLoadConfig_ExplicitConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  file: custom.json\n"), 0644))

	cfg, err := NewLoader(t.TempDir(), WithConfigFile(path)).Load()
	require.NoError(t, err)
	assert.Equal(t, "custom.json", cfg.Output.File)

	_, err = NewLoader(dir, WithConfigFile(filepath.Join(dir, "missing.yaml"))).Load()
	assert.Error(t, err)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "render:\n  line_length: 100\noutput:\n  file: file.json\n")

	t.Setenv("PYDOCJSON_RENDER_LINE_LENGTH", "60")
	t.Setenv("PYDOCJSON_OUTPUT_FILE", "env.json")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Render.LineLength)
	assert.Equal(t, "env.json", cfg.Output.File)
	assert.Equal(t, 7, cfg.Render.MaxLines)
}

func TestLoadConfig_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("PYDOCJSON_RENDER_MAX_LINES", "12")
	t.Setenv("PYDOCJSON_PRIVACY", "HIDDEN:pkg.tests.**,PUBLIC:pkg._api")
	t.Setenv("PYDOCJSON_PROJECT_BASE_DIRECTORY", "/srv/project")

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Render.MaxLines)
	assert.Equal(t, []string{"HIDDEN:pkg.tests.**", "PUBLIC:pkg._api"}, cfg.Privacy)
	assert.Equal(t, "/srv/project", cfg.Project.BaseDirectory)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "render:\n  line_length: \"unclosed\n  max_lines: [\n")

	cfg, err := NewLoader(dir).Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "render:\n  line_length: -1\n")

	cfg, err := NewLoader(dir).Load()

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidLineLen)
}

func TestValidate_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"negative line length", func(c *Config) { c.Render.LineLength = -5 }, ErrInvalidLineLen},
		{"negative max lines", func(c *Config) { c.Render.MaxLines = -1 }, ErrInvalidMaxLines},
		{"privacy without pattern", func(c *Config) { c.Privacy = []string{"HIDDEN"} }, ErrInvalidPrivacyRule},
		{"unknown privacy class", func(c *Config) { c.Privacy = []string{"SECRET:pkg"} }, ErrInvalidPrivacyRule},
		{"bad include glob", func(c *Config) { c.Paths.Include = []string{"[abc"} }, ErrInvalidPattern},
		{"empty output", func(c *Config) { c.Output.File = "  " }, ErrEmptyOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_AcceptsZeroLimits(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Render.LineLength = 0
	cfg.Render.MaxLines = 0
	cfg.Privacy = []string{"hidden:pkg.**", "PUBLIC:pkg.api"}

	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReturnsMultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Render.LineLength = -1
	cfg.Output.File = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "line_length")
	assert.Contains(t, err.Error(), "output.file")
}

func TestToEngineOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Project.BaseDirectory = "/srv/project"
	cfg.Privacy = []string{"HIDDEN:pkg.tests.**"}
	cfg.Render.LineLength = 60

	opts, err := cfg.ToEngineOptions("pkg", nil)
	require.NoError(t, err)

	assert.Equal(t, "/srv/project", opts.ProjectBaseDirectory)
	assert.Equal(t, []string{"pkg"}, opts.SourcePaths)
	assert.Equal(t, cfg.Paths.Include, opts.Include)
	assert.Equal(t, cfg.Paths.Ignore, opts.Ignore)
	assert.Equal(t, 60, opts.LineLen)
	assert.Equal(t, 7, opts.MaxLines)
	require.Len(t, opts.Privacy, 1)
	assert.Equal(t, model.Hidden, opts.Privacy[0].Class)
	assert.True(t, opts.Privacy[0].Match("pkg.tests.test_x"))
}

func TestToEngineOptions_DefaultsToWorkingDirectory(t *testing.T) {
	t.Parallel()

	wd, err := os.Getwd()
	require.NoError(t, err)

	opts, err := Default().ToEngineOptions("pkg", nil)
	require.NoError(t, err)
	assert.Equal(t, wd, opts.ProjectBaseDirectory)

	cfg := Default()
	cfg.Project.BaseDirectory = "src"
	opts, err = cfg.ToEngineOptions("pkg", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "src"), opts.ProjectBaseDirectory)
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	wd, err := os.Getwd()
	require.NoError(t, err)

	cfg := Default()
	path, err := cfg.OutputPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "docs.json"), path)

	cfg.Output.File = "/tmp/out.json"
	path, err = cfg.OutputPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out.json", path)
}
