package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/pydocjson/internal/config"
	"github.com/mvp-joe/pydocjson/internal/engine"
	"github.com/mvp-joe/pydocjson/internal/serializer"
)

// docsGenerator runs one full build: model, records, output file.
// It implements watcher.Generator so watch mode reruns the same steps.
type docsGenerator struct {
	cfg        *config.Config
	sourcePath string
	log        *logrus.Logger
	quiet      bool
	out        io.Writer
}

func newDocsGenerator(cfg *config.Config, sourcePath string, log *logrus.Logger, quiet bool, out io.Writer) *docsGenerator {
	return &docsGenerator{
		cfg:        cfg,
		sourcePath: sourcePath,
		log:        log,
		quiet:      quiet,
		out:        out,
	}
}

// Generate rebuilds the whole system. changed is only logged; a Python
// import graph makes partial rebuilds unsafe.
func (g *docsGenerator) Generate(ctx context.Context, changed []string) error {
	if len(changed) > 0 {
		g.log.WithField("files", changed).Debug("Regenerating after change")
	}

	opts, err := g.cfg.ToEngineOptions(g.sourcePath, g.log)
	if err != nil {
		return fmt.Errorf("failed to build engine options: %w", err)
	}

	progress := NewCLIProgressReporter(g.quiet, g.out)
	sys, err := engine.GetSystem(ctx, opts, progress)
	if err != nil {
		return fmt.Errorf("failed to build documentation model: %w", err)
	}

	records := serializer.ForSystem(sys, g.log).Serialize(sys.RootObjects)

	path, err := g.cfg.OutputPath()
	if err != nil {
		return err
	}
	if err := serializer.WriteFile(path, records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	g.log.WithFields(logrus.Fields{
		"file":  path,
		"roots": len(records),
	}).Info("Documentation written")
	progress.OnWritten(path)
	return nil
}

// sourceRoot returns the absolute source path being documented.
func (g *docsGenerator) sourceRoot() (string, error) {
	opts, err := g.cfg.ToEngineOptions(g.sourcePath, g.log)
	if err != nil {
		return "", fmt.Errorf("failed to build engine options: %w", err)
	}
	return absSourcePath(opts.ProjectBaseDirectory, g.sourcePath), nil
}
