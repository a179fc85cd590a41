package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/pydocjson/internal/model"
)

// GetSystem discovers and parses every source path and returns the
// resulting documentation model. progress may be nil.
//
// The context is checked between files; cancellation returns ctx.Err().
func GetSystem(ctx context.Context, opts Options, progress ProgressReporter) (*model.System, error) {
	if len(opts.SourcePaths) == 0 {
		return nil, ErrNoSources
	}
	if progress == nil {
		progress = noopProgress{}
	}
	log := opts.logger()

	rules := make([]PrivacyRule, len(opts.Privacy))
	copy(rules, opts.Privacy)
	for i := range rules {
		if err := rules[i].compile(); err != nil {
			return nil, err
		}
	}

	discovery, err := newSourceDiscovery(opts.Include, opts.Ignore, log)
	if err != nil {
		return nil, fmt.Errorf("failed to compile path patterns: %w", err)
	}

	sys := model.NewSystem(opts.LineLen, opts.MaxLines)
	var sources []moduleSource
	for _, p := range opts.SourcePaths {
		path := p
		if !filepath.IsAbs(path) && opts.ProjectBaseDirectory != "" {
			path = filepath.Join(opts.ProjectBaseDirectory, path)
		}

		root, found, err := discovery.discover(ctx, path)
		if err != nil {
			return nil, err
		}
		if root == nil {
			log.WithField("path", path).Warn("No Python sources found")
			continue
		}
		sys.AddRoot(root)
		sources = append(sources, found...)
	}

	log.WithFields(logrus.Fields{
		"roots":   len(sys.RootObjects),
		"modules": len(sources),
	}).Debug("Discovery complete")
	progress.OnDiscoveryComplete(len(sources))

	parser := newPythonParser(log)
	imports := make(map[string]map[string]string, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		modImports, err := parser.ParseFile(ctx, src.obj, src.path)
		if err != nil {
			return nil, fmt.Errorf("failed to parse module %s: %w", src.obj.FullName, err)
		}
		imports[src.obj.FullName] = modImports
		progress.OnModuleParsed(src.obj.FullName)
	}

	sys.Reindex()
	applyPrivacy(sys, rules)

	hierarchy := newClassHierarchy(sys, imports, log)
	if err := hierarchy.build(); err != nil {
		return nil, fmt.Errorf("failed to build class hierarchy: %w", err)
	}
	if err := hierarchy.markExceptions(); err != nil {
		return nil, fmt.Errorf("failed to detect exceptions: %w", err)
	}

	count := sys.Count()
	log.WithField("objects", count).Info("Documentation model built")
	progress.OnComplete(count)
	return sys, nil
}
