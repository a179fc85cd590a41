package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/pydocjson/internal/engine"
)

// ToEngineOptions converts a Config to engine.Options for the given source
// path. A relative base directory is resolved against the working directory.
func (c *Config) ToEngineOptions(sourcePath string, log *logrus.Logger) (engine.Options, error) {
	base := c.Project.BaseDirectory
	if base == "" || !filepath.IsAbs(base) {
		wd, err := os.Getwd()
		if err != nil {
			return engine.Options{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = filepath.Join(wd, base)
	}

	rules := make([]engine.PrivacyRule, 0, len(c.Privacy))
	for _, s := range c.Privacy {
		rule, err := engine.ParsePrivacyRule(s)
		if err != nil {
			return engine.Options{}, err
		}
		rules = append(rules, rule)
	}

	return engine.Options{
		ProjectBaseDirectory: base,
		SourcePaths:          []string{sourcePath},
		Include:              c.Paths.Include,
		Ignore:               c.Paths.Ignore,
		Privacy:              rules,
		LineLen:              c.Render.LineLength,
		MaxLines:             c.Render.MaxLines,
		Logger:               log,
	}, nil
}

// OutputPath returns the output file path. A relative path is resolved
// against the working directory, not the project base directory.
func (c *Config) OutputPath() (string, error) {
	if filepath.IsAbs(c.Output.File) {
		return c.Output.File, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, c.Output.File), nil
}
