package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestOptionsFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"LOG_LEVEL", "LOG_TO_CONSOLE", "LOG_TO_FILE", "LOG_FILE", "LOG_FORMAT", "LOG_CALLER"} {
		t.Setenv(k, "")
	}
	opts := OptionsFromEnv()
	if opts.Level != zapcore.InfoLevel || !opts.Console || opts.ToFile || opts.Format != "legacy" {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}

func TestOptionsFromEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("LOG_FORMAT", "yaml")
	t.Setenv("LOG_TO_CONSOLE", "false")
	opts := OptionsFromEnv()
	if opts.Level != zapcore.WarnLevel {
		t.Fatalf("level = %v", opts.Level)
	}
	if opts.Format != "legacy" {
		t.Fatalf("unknown format should fall back to legacy, got %q", opts.Format)
	}
	if opts.Console {
		t.Fatalf("console should be disabled")
	}
}

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	logger, err := New(Options{Level: zapcore.DebugLevel, ToFile: true, File: path, Format: "json"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("game_create", zap.Int("width", 8))
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"game_create"`) || !strings.Contains(string(raw), `"width":8`) {
		t.Fatalf("log content = %s", raw)
	}
}

func TestSetResetsToNop(t *testing.T) {
	t.Cleanup(func() { Set(nil) })
	l := zap.NewExample()
	Set(l)
	if L() != l {
		t.Fatalf("Set did not install logger")
	}
	Set(nil)
	if L() == nil || L() == l {
		t.Fatalf("Set(nil) should install a no-op logger")
	}
}
