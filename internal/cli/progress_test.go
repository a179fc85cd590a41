package cli

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// Test Plan for CLI output helpers:
// - Quiet reporter prints nothing
// - Reporter prints discovery, completion and output lines
// - Zero modules never creates a progress bar
// - formatNumber inserts thousand separators
// - setupLogger honours --log-level and --verbose, falling back to info

func TestCLIProgressReporter_Quiet(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := NewCLIProgressReporter(true, &out)
	r.OnDiscoveryComplete(3)
	r.OnModuleParsed("a")
	r.OnModuleParsed("b")
	r.OnModuleParsed("c")
	r.OnComplete(42)
	r.OnWritten("docs.json")

	assert.Empty(t, out.String())
}

func TestCLIProgressReporter_Summary(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := NewCLIProgressReporter(false, &out)
	r.OnDiscoveryComplete(2)
	r.OnModuleParsed("pkg")
	r.OnModuleParsed("pkg.mod")
	r.OnComplete(1234)
	r.OnWritten("docs.json")

	s := out.String()
	assert.Contains(t, s, "Found 2 modules")
	assert.Contains(t, s, "✓ Model built: 1,234 objects in 2 modules")
	assert.Contains(t, s, "✓ Wrote docs.json")
	assert.Nil(t, r.moduleBar)
}

func TestCLIProgressReporter_NoModules(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := NewCLIProgressReporter(false, &out)
	r.OnDiscoveryComplete(0)
	assert.Nil(t, r.moduleBar)
	r.OnComplete(0)

	assert.Contains(t, out.String(), "✓ Model built: 0 objects in 0 modules")
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in))
	}
}

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		level   string
		verbose bool
		want    logrus.Level
	}{
		{"debug", "debug", false, logrus.DebugLevel},
		{"warn", "warn", false, logrus.WarnLevel},
		{"error", "error", false, logrus.ErrorLevel},
		{"verbose wins", "error", true, logrus.DebugLevel},
		{"unknown falls back to info", "loud", false, logrus.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			logger := setupLogger(tt.level, tt.verbose, &out)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}
