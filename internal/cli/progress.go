package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements engine.ProgressReporter with a progress bar.
type CLIProgressReporter struct {
	quiet         bool
	out           io.Writer
	moduleBar     *progressbar.ProgressBar
	startTime     time.Time
	totalModules  int
	parsedModules int
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(quiet bool, out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:     quiet,
		out:       out,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) OnDiscoveryComplete(modules int) {
	if c.quiet {
		return
	}
	c.totalModules = modules
	c.parsedModules = 0
	fmt.Fprintf(c.out, "Found %s modules\n", formatNumber(modules))
	if modules == 0 {
		return
	}

	out := c.out
	c.moduleBar = progressbar.NewOptions(modules,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Parsing modules"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("modules/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(out)
		}),
	)
}

func (c *CLIProgressReporter) OnModuleParsed(name string) {
	if c.quiet {
		return
	}
	c.parsedModules++
	if c.moduleBar != nil {
		c.moduleBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(objects int) {
	if c.quiet {
		return
	}
	if c.moduleBar != nil {
		if c.parsedModules < c.totalModules {
			c.moduleBar.Finish()
		}
		c.moduleBar = nil
	}
	fmt.Fprintf(c.out, "✓ Model built: %s objects in %s modules (took %.1fs)\n",
		formatNumber(objects), formatNumber(c.parsedModules), time.Since(c.startTime).Seconds())
}

// OnWritten reports the output file once it is in place.
func (c *CLIProgressReporter) OnWritten(path string) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "✓ Wrote %s\n", path)
}

// formatNumber formats an integer with thousand separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
