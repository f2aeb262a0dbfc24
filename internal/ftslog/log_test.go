package ftslog_test

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/orneryd/nornicdb/internal/ftslog"
)

// captureStderr redirects os.Stderr for the duration of fn and returns
// everything written to it. ftslog.New binds to os.Stderr at construction
// time, so fn must construct the Logger it exercises itself.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()
	w.Close()

	var sb strings.Builder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestLogger_LevelFiltersBelowThreshold(t *testing.T) {
	out := captureStderr(t, func() {
		logger := ftslog.New("query:abc123", ftslog.LevelWarn)
		logger.Debug("should not appear", nil)
		logger.Info("should not appear either", nil)
		logger.Warn("visible warning", nil)
	})
	if strings.Contains(out, "should not appear") {
		t.Errorf("output = %q, want debug/info suppressed below LevelWarn", out)
	}
	if !strings.Contains(out, "visible warning") {
		t.Errorf("output = %q, want the warn-level message present", out)
	}
}

func TestLogger_PrefixAndFieldsRenderInLine(t *testing.T) {
	out := captureStderr(t, func() {
		logger := ftslog.New("query:abc123", ftslog.LevelDebug)
		logger.Error("validation failed", map[string]interface{}{"term": "fox"})
	})
	if !strings.Contains(out, "[query:abc123]") {
		t.Errorf("output = %q, want the prefix in brackets", out)
	}
	if !strings.Contains(out, "ERROR") {
		t.Errorf("output = %q, want the level name", out)
	}
	if !strings.Contains(out, "fox") {
		t.Errorf("output = %q, want the structured field rendered", out)
	}
}

func TestLogger_SetLevelChangesThreshold(t *testing.T) {
	out := captureStderr(t, func() {
		logger := ftslog.New("query:abc123", ftslog.LevelError)
		logger.Info("still suppressed", nil)
		logger.SetLevel(ftslog.LevelInfo)
		logger.Info("now visible", nil)
	})
	if strings.Contains(out, "still suppressed") {
		t.Errorf("output = %q, want Info suppressed before SetLevel", out)
	}
	if !strings.Contains(out, "now visible") {
		t.Errorf("output = %q, want Info visible after SetLevel", out)
	}
}

func TestLevel_String(t *testing.T) {
	cases := map[ftslog.Level]string{
		ftslog.LevelDebug: "DEBUG",
		ftslog.LevelInfo:  "INFO",
		ftslog.LevelWarn:  "WARN",
		ftslog.LevelError: "ERROR",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}
