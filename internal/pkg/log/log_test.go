package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is a bytes.Buffer safe for concurrent handlers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLoggerRaceCondition(t *testing.T) {
	// ensure logger is stopped before starting
	Stop()

	if err := Start(&Config{StdoutEnabled: true, StdoutLevel: slog.LevelDebug, Stdout: &lockedBuffer{}, NoColor: true}); err != nil {
		t.Fatalf("Failed to start logger: %v", err)
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(4)
		go func() { defer wg.Done(); Debug("message") }()
		go func() { defer wg.Done(); Info("message") }()
		go func() { defer wg.Done(); Warn("message") }()
		go func() { defer wg.Done(); Error("message") }()
	}

	stopped := make(chan struct{})
	go func() {
		Stop()
		close(stopped)
	}()

	wg.Wait()

	<-stopped

	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if multiLogger != nil {
		t.Error("Logger should be nil after Stop()")
	}
}

func TestLoggerNilSafety(t *testing.T) {
	Stop()

	Debug("Should not panic when logger is nil")
	Info("Should not panic when logger is nil")
	Warn("Should not panic when logger is nil")
	Error("Should not panic when logger is nil")

	NewFieldedLogger(&Fields{"component": "test"}).Info("Should not panic either")
}

func TestStartTwice(t *testing.T) {
	Stop()
	defer Stop()

	require.NoError(t, Start(&Config{}))
	assert.ErrorIs(t, Start(&Config{}), ErrLoggerAlreadyInitialized)
}

func TestRouting(t *testing.T) {
	Stop()
	defer Stop()

	stdout := &lockedBuffer{}
	stderr := &lockedBuffer{}

	require.NoError(t, Start(&Config{
		StdoutEnabled: true,
		StdoutLevel:   slog.LevelInfo,
		StderrEnabled: true,
		StderrLevel:   slog.LevelError,
		NoColor:       true,
		Stdout:        stdout,
		Stderr:        stderr,
	}))

	logger := NewFieldedLogger(&Fields{"component": "routing"})
	logger.Debug("hidden")
	logger.Info("to stdout", "key", "value")
	logger.Error("to stderr")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "to stdout")
	assert.Contains(t, stdout.String(), "component=routing")
	assert.Contains(t, stdout.String(), "key=value")
	assert.NotContains(t, stdout.String(), "to stderr")
	assert.Contains(t, stderr.String(), "to stderr")
}

func TestFieldedLoggerWith(t *testing.T) {
	Stop()
	defer Stop()

	stdout := &lockedBuffer{}
	require.NoError(t, Start(&Config{StdoutEnabled: true, StdoutLevel: slog.LevelInfo, NoColor: true, Stdout: stdout}))

	base := NewFieldedLogger(&Fields{"component": "crawler"})
	base.With("session", "abc").Info("hello")
	base.Info("bare")

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "session=abc")
	assert.NotContains(t, lines[1], "session=abc")
}

func TestFileDestination(t *testing.T) {
	Stop()

	dir := t.TempDir()
	require.NoError(t, Start(&Config{
		FileConfig: &FileConfig{Dir: dir, Prefix: "test", Level: slog.LevelDebug, RotatePeriod: time.Hour},
	}))

	Debug("written to file")
	Stop()

	matches, err := filepath.Glob(filepath.Join(dir, "test-*.log"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to file")
}
