package watcher

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// WatchCoordinator routes debounced file changes to a Generator. The file
// watcher is paused while a generation runs so runs never overlap.
type WatchCoordinator struct {
	files     FileWatcher
	generator Generator
	log       *logrus.Logger
}

// NewWatchCoordinator creates a new watch coordinator. log may be nil.
func NewWatchCoordinator(files FileWatcher, generator Generator, log *logrus.Logger) *WatchCoordinator {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &WatchCoordinator{
		files:     files,
		generator: generator,
		log:       log,
	}
}

// Start begins routing file changes to the generator.
// Blocks until context is cancelled.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	if err := c.files.Start(ctx, func(files []string) { c.handleFileChange(ctx, files) }); err != nil {
		c.cleanup()
		return err
	}

	<-ctx.Done()
	c.cleanup()
	return ctx.Err()
}

// cleanup stops the file watcher.
func (c *WatchCoordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		c.log.WithError(err).Warn("File watcher stop failed")
	}
}

// handleFileChange regenerates the output:
// 1. Pause file watching
// 2. Run the generator
// 3. Resume file watching (changes made meanwhile fire right away)
func (c *WatchCoordinator) handleFileChange(ctx context.Context, files []string) {
	if len(files) == 0 || ctx.Err() != nil {
		return
	}

	c.files.Pause()
	defer c.files.Resume()

	c.log.WithField("files", len(files)).Info("Change detected, regenerating")
	if err := c.generator.Generate(ctx, files); err != nil {
		c.log.WithError(err).Error("Generation failed")
	}
}
