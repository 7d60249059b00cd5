package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type testConfig struct {
	Name  string `toml:"name"`
	Value int    `toml:"value"`
}

func loadTestConfig(path string) (testConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return testConfig{}, err
	}
	var cfg testConfig
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startWatcher[T any](t *testing.T, w *Watcher[T]) {
	t.Helper()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("watcher.Stop failed: %v", err)
		}
	})
	// fsnotify needs a moment before the first write is observed
	time.Sleep(100 * time.Millisecond)
}

func TestWatcherReload(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "name = \"initial\"\nvalue = 1\n")

	received := make(chan testConfig, 1)
	w := NewWatcher(path, loadTestConfig, newTestLogger(), WithDebounce[testConfig](50*time.Millisecond))
	w.OnReload(func(cfg testConfig) { received <- cfg })
	startWatcher(t, w)

	writeFile(t, filepath.Dir(path), "config.toml", "name = \"updated\"\nvalue = 42\n")

	select {
	case cfg := <-received:
		if cfg.Name != "updated" || cfg.Value != 42 {
			t.Errorf("got %+v, want name=updated value=42", cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", "value = 1\n")

	var calls atomic.Int32
	w := NewWatcher(path, loadTestConfig, newTestLogger(), WithDebounce[testConfig](20*time.Millisecond))
	w.OnReload(func(testConfig) { calls.Add(1) })
	startWatcher(t, w)

	writeFile(t, dir, "other.toml", "value = 2\n")
	time.Sleep(200 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("handler called %d times for an unrelated file", n)
	}
}

func TestWatcherDebounce(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "value = 0\n")

	var calls atomic.Int32
	last := make(chan testConfig, 10)
	w := NewWatcher(path, loadTestConfig, newTestLogger(), WithDebounce[testConfig](200*time.Millisecond))
	w.OnReload(func(cfg testConfig) {
		calls.Add(1)
		last <- cfg
	})
	startWatcher(t, w)

	for i := 1; i <= 5; i++ {
		writeFile(t, filepath.Dir(path), "config.toml", "value = "+string(rune('0'+i))+"\n")
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case cfg := <-last:
		if cfg.Value != 5 {
			t.Errorf("Value = %d, want 5", cfg.Value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}

	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("handler called %d times, want 1", n)
	}
}

func TestWatcherUnsubscribe(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "value = 1\n")

	var removed, kept atomic.Int32
	done := make(chan struct{}, 1)
	w := NewWatcher(path, loadTestConfig, newTestLogger(), WithDebounce[testConfig](20*time.Millisecond))
	unsubscribe := w.OnReload(func(testConfig) { removed.Add(1) })
	w.OnReload(func(testConfig) {
		kept.Add(1)
		done <- struct{}{}
	})
	unsubscribe()
	startWatcher(t, w)

	writeFile(t, filepath.Dir(path), "config.toml", "value = 2\n")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
	if removed.Load() != 0 {
		t.Error("unsubscribed handler was called")
	}
	if kept.Load() == 0 {
		t.Error("remaining handler was not called")
	}
}

func TestWatcherErrorHandler(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "value = 1\n")

	errCh := make(chan error, 1)
	var calls atomic.Int32
	w := NewWatcher(path, loadTestConfig, newTestLogger(),
		WithDebounce[testConfig](20*time.Millisecond),
		WithErrorHandler[testConfig](func(err error) { errCh <- err }),
	)
	w.OnReload(func(testConfig) { calls.Add(1) })
	startWatcher(t, w)

	writeFile(t, filepath.Dir(path), "config.toml", "value = [broken\n")

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("expected a parse error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
	if calls.Load() != 0 {
		t.Error("handler should not be called when loading fails")
	}
}

func TestWatcherStartTwice(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "value = 1\n")

	w := NewWatcher(path, loadTestConfig, newTestLogger())
	startWatcher(t, w)

	if err := w.Start(); err == nil {
		t.Error("second Start should fail")
	}
}

func TestWatcherStartMissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope", "config.toml"), loadTestConfig, newTestLogger())
	if err := w.Start(); err == nil {
		t.Error("Start should fail when the directory does not exist")
		_ = w.Stop()
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	w := NewWatcher("config.toml", loadTestConfig, newTestLogger())
	if err := w.Stop(); err != nil {
		t.Errorf("Stop on unstarted watcher: %v", err)
	}
}

type loggingOptions struct {
	Config       string
	LoggingLevel string `toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingHTTP  string `toml:"logging.http" env:"LOGGING_HTTP"`
}

func TestWatcherKeepsEnvLevelAcrossReload(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "[logging]\nhttp = \"info\"\n")
	t.Setenv("DSRNODE_LOGGING_LEVEL", "debug")

	base := loggingOptions{Config: path, LoggingLevel: "info", LoggingHTTP: "info"}
	startup := base
	if err := LoadConfig(&startup, nil); err != nil {
		t.Fatal(err)
	}
	if startup.LoggingLevel != "debug" {
		t.Fatalf("startup LoggingLevel = %q, want debug from env", startup.LoggingLevel)
	}

	received := make(chan loggingOptions, 1)
	w := NewWatcher(path, ReloadLoader(base, nil), newTestLogger(), WithDebounce[loggingOptions](20*time.Millisecond))
	w.OnReload(func(opts loggingOptions) { received <- opts })
	startWatcher(t, w)

	writeFile(t, filepath.Dir(path), "config.toml", "[logging]\nhttp = \"warn\"\n")

	select {
	case opts := <-received:
		if opts.LoggingLevel != "debug" {
			t.Errorf("LoggingLevel = %q after reload, want debug from env", opts.LoggingLevel)
		}
		if opts.LoggingHTTP != "warn" {
			t.Errorf("LoggingHTTP = %q after reload, want warn from file", opts.LoggingHTTP)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}
