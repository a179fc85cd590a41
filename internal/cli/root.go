package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/pydocjson/internal/config"
	"github.com/mvp-joe/pydocjson/internal/watcher"
)

// rootOptions holds the flags of the root command.
type rootOptions struct {
	configFile string
	output     string
	watch      bool
	quiet      bool
	verbose    bool
	logLevel   string
	privacy    []string
}

// newRootCmd builds the pydocjson command tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pydocjson <source-path>",
		Short: "Export Python API documentation as JSON",
		Long: `pydocjson reads a Python package or module and writes its documented
API (modules, classes, functions, attributes) as one JSON array.

Each object becomes a record with its full name, kind, visibility,
docstring fields and, depending on the kind, bases, signature or
rendered type and value. Children are nested in source order.

Examples:
  # Document a package into docs.json
  pydocjson ./mypkg

  # Write somewhere else, hiding a vendored subpackage
  pydocjson ./mypkg -o build/api.json --privacy "HIDDEN:mypkg._vendor.**"

  # Regenerate whenever a source file changes
  pydocjson ./mypkg --watch
`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "config file (default is .pydocjson/config.yml)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default is docs.json)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Watch for file changes and regenerate")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Disable progress bars and non-error output")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.Flags().StringArrayVar(&opts.privacy, "privacy", nil, "Privacy rule CLASS:pattern, e.g. HIDDEN:pkg.tests.** (repeatable)")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command.
// This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, sourcePath string, opts *rootOptions) error {
	out := cmd.OutOrStdout()
	log := setupLogger(opts.logLevel, opts.verbose, cmd.ErrOrStderr())

	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			if !opts.quiet {
				fmt.Fprintln(out, "\nInterrupted! Cancelling...")
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	gen := newDocsGenerator(cfg, sourcePath, log, opts.quiet, out)
	if err := gen.Generate(ctx, nil); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("generation cancelled: %w", ctx.Err())
		}
		return err
	}

	if !opts.watch {
		return nil
	}
	return runWatch(ctx, gen, log, opts.quiet, out)
}

// loadConfig loads the configuration and applies flag overrides on top.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	cfg, err := config.NewLoader(rootDir, loaderOpts...).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cmd.Flags().Changed("output") {
		cfg.Output.File = opts.output
	}
	cfg.Privacy = append(cfg.Privacy, opts.privacy...)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runWatch(ctx context.Context, gen *docsGenerator, log *logrus.Logger, quiet bool, out io.Writer) error {
	root, err := gen.sourceRoot()
	if err != nil {
		return err
	}

	files, err := watcher.NewFileWatcher([]string{root}, []string{".py", ".pyi"}, watcher.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if !quiet {
		fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", root)
	}

	coordinator := watcher.NewWatchCoordinator(files, gen, log)
	if err := coordinator.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch mode failed: %w", err)
	}

	if !quiet {
		fmt.Fprintln(out, "Watch mode stopped")
	}
	return nil
}

// absSourcePath resolves a source path the way the engine does.
func absSourcePath(base, sourcePath string) string {
	if filepath.IsAbs(sourcePath) {
		return filepath.Clean(sourcePath)
	}
	return filepath.Join(base, sourcePath)
}
