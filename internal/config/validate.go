package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/pydocjson/internal/engine"
)

var (
	// ErrInvalidLineLen indicates a negative render line length
	ErrInvalidLineLen = errors.New("invalid line length")

	// ErrInvalidMaxLines indicates a negative render line count
	ErrInvalidMaxLines = errors.New("invalid max lines")

	// ErrInvalidPrivacyRule indicates a malformed privacy rule
	ErrInvalidPrivacyRule = engine.ErrInvalidPrivacyRule

	// ErrInvalidPattern indicates a path glob that does not compile
	ErrInvalidPattern = errors.New("invalid path pattern")

	// ErrEmptyOutput indicates a missing output file name
	ErrEmptyOutput = errors.New("empty output file")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	// Validate paths configuration
	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	// Validate render configuration
	if err := validateRender(&cfg.Render); err != nil {
		errs = append(errs, err)
	}

	// Validate privacy rules
	for _, rule := range cfg.Privacy {
		if _, err := engine.ParsePrivacyRule(rule); err != nil {
			errs = append(errs, err)
		}
	}

	if strings.TrimSpace(cfg.Output.File) == "" {
		errs = append(errs, fmt.Errorf("%w: output.file must be set", ErrEmptyOutput))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	for _, group := range [][]string{cfg.Include, cfg.Ignore} {
		for _, pattern := range group {
			if _, err := glob.Compile(pattern, '/'); err != nil {
				errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
			}
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateRender(cfg *RenderConfig) error {
	var errs []error

	// Zero disables the limit; only negative values are invalid
	if cfg.LineLength < 0 {
		errs = append(errs, fmt.Errorf("%w: line_length cannot be negative, got %d", ErrInvalidLineLen, cfg.LineLength))
	}

	if cfg.MaxLines < 0 {
		errs = append(errs, fmt.Errorf("%w: max_lines cannot be negative, got %d", ErrInvalidMaxLines, cfg.MaxLines))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
