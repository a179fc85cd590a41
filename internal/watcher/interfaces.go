package watcher

import "context"

// FileWatcher monitors Python sources for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching source paths, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Generator regenerates the documentation output.
type Generator interface {
	// Generate runs one full generation. changed lists the files that
	// triggered it and is informational only.
	Generate(ctx context.Context, changed []string) error
}
