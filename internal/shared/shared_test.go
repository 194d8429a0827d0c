package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		name  string
		level string
		want  log.Level
	}{
		{name: "debug", level: "debug", want: log.DebugLevel},
		{name: "mixed case warn", level: " WARN ", want: log.WarnLevel},
		{name: "warning alias", level: "warning", want: log.WarnLevel},
		{name: "error", level: "error", want: log.ErrorLevel},
		{name: "unknown defaults to info", level: "chatty", want: log.InfoLevel},
		{name: "empty defaults to info", level: "", want: log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLogLevel(tt.level); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tc := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short string untouched", in: "hello", n: 10, want: "hello"},
		{name: "exact length untouched", in: "hello", n: 5, want: "hello"},
		{name: "cut with ellipsis", in: "hello world", n: 6, want: "hello…"},
		{name: "multibyte runes", in: "こんにちは世界", n: 4, want: "こんに…"},
		{name: "zero limit untouched", in: "hello", n: 0, want: "hello"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Run("GenerateID is unique", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == "" || a == b {
			t.Errorf("expected two distinct ids, got %q and %q", a, b)
		}
	})

	t.Run("MarshalJSON pretty", func(t *testing.T) {
		data, err := MarshalJSON(map[string]int{"a": 1}, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(data), "\n  \"a\": 1") {
			t.Errorf("expected indented JSON, got %s", data)
		}
	})

	t.Run("VerifyAndReadFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "cards.json")
		if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		data, err := VerifyAndReadFile(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("expected file contents, got %s", data)
		}

		if _, err := VerifyAndReadFile(dir); err == nil {
			t.Error("expected error for directory")
		}
		if _, err := VerifyAndReadFile(""); err == nil {
			t.Error("expected error for empty path")
		}
	})

	t.Run("NewFileLogger creates directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "memoru.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		logger.Info("hello")

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(content), "hello") {
			t.Errorf("expected log line in file, got %q", content)
		}
	})
}
