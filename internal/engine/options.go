// Package engine builds the documentation model of a Python source tree.
//
// Sources are discovered with glob patterns, parsed with tree-sitter and
// turned into a forest of model.Documentable objects. Imports are resolved
// within the system only; nothing outside the source paths is loaded.
package engine

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/pydocjson/internal/model"
)

var (
	// ErrSourceNotFound indicates a source path that does not exist.
	ErrSourceNotFound = errors.New("source path not found")

	// ErrNoSources indicates that no source path was given.
	ErrNoSources = errors.New("no source paths")

	// ErrInvalidPrivacyRule indicates a malformed privacy rule.
	ErrInvalidPrivacyRule = errors.New("invalid privacy rule")
)

// Options configures system construction.
type Options struct {
	// ProjectBaseDirectory is the directory relative source paths are resolved against.
	ProjectBaseDirectory string
	// SourcePaths are Python files or package directories.
	SourcePaths []string

	// Include and Ignore are glob patterns matched against paths relative
	// to each source directory.
	Include []string
	Ignore  []string

	// Privacy rules, applied in order; the last matching rule wins.
	Privacy []PrivacyRule

	// LineLen and MaxLines limit how attribute values are rendered.
	LineLen  int
	MaxLines int

	Logger *logrus.Logger
}

// PrivacyRule forces a privacy class on objects whose full name matches Pattern.
// Pattern is a glob where '.' separates name components: "pkg._impl.*"
// matches direct children of pkg._impl, "pkg._impl.**" all descendants.
type PrivacyRule struct {
	Class   model.PrivacyClass
	Pattern string

	g glob.Glob
}

// ParsePrivacyRule parses "CLASS:pattern", e.g. "HIDDEN:pkg.tests.**".
func ParsePrivacyRule(s string) (PrivacyRule, error) {
	class, pattern, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(pattern) == "" {
		return PrivacyRule{}, fmt.Errorf("%w: %q (want CLASS:pattern)", ErrInvalidPrivacyRule, s)
	}
	pc, ok := model.ParsePrivacyClass(strings.TrimSpace(class))
	if !ok {
		return PrivacyRule{}, fmt.Errorf("%w: unknown privacy class %q", ErrInvalidPrivacyRule, class)
	}
	rule := PrivacyRule{Class: pc, Pattern: strings.TrimSpace(pattern)}
	if err := rule.compile(); err != nil {
		return PrivacyRule{}, err
	}
	return rule, nil
}

func (r *PrivacyRule) compile() error {
	if r.g != nil {
		return nil
	}
	g, err := glob.Compile(r.Pattern, '.')
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidPrivacyRule, r.Pattern, err)
	}
	r.g = g
	return nil
}

// Match reports whether the rule applies to the given full name.
func (r *PrivacyRule) Match(fullName string) bool {
	return r.g != nil && r.g.Match(fullName)
}

// ProgressReporter receives progress callbacks during system construction.
type ProgressReporter interface {
	OnDiscoveryComplete(modules int)
	OnModuleParsed(name string)
	OnComplete(objects int)
}

type noopProgress struct{}

func (noopProgress) OnDiscoveryComplete(int) {}
func (noopProgress) OnModuleParsed(string)   {}
func (noopProgress) OnComplete(int)          {}

func (o *Options) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
