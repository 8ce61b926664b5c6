package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	l := New(DefaultConfig())
	if l == nil {
		t.Fatal("New() returned nil")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != InfoLevel {
		t.Errorf("Level = %v, want InfoLevel", cfg.Level)
	}
	if !cfg.Pretty {
		t.Error("Pretty should be true by default")
	}
	if cfg.Output == nil {
		t.Error("Output should not be nil")
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, Pretty: false, Output: &buf})

	l.WithComponent("extract").Info("test message")

	if !strings.Contains(buf.String(), "extract") {
		t.Errorf("output should contain component: %s", buf.String())
	}
}

func TestLogger_WithURL(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, Pretty: false, Output: &buf})

	l.WithURL("https://example.com/api").Info("fetching")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["url"] != "https://example.com/api" {
		t.Errorf("url field = %v", entry["url"])
	}
}

func TestLogger_DiscoveryEvent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, Pretty: false, Output: &buf})

	l.DiscoveryEvent("endpoint", "/api/v1/users", "anchor-link")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["kind"] != "endpoint" || entry["origin"] != "anchor-link" {
		t.Errorf("entry = %v", entry)
	}
	if entry["message"] != "Discovered candidate" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestLogger_CaptureEventLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, Pretty: false, Output: &buf})

	// Capture events log at debug level and are filtered at info.
	l.CaptureEvent("GET", "/api/v1/users", 200)
	if buf.Len() != 0 {
		t.Errorf("capture event leaked at info level: %s", buf.String())
	}

	l.SetLevel(DebugLevel)
	l.CaptureEvent("GET", "/api/v1/users", 200)
	if !strings.Contains(buf.String(), "/api/v1/users") {
		t.Errorf("capture event missing at debug level: %s", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: WarnLevel, Pretty: false, Output: &buf})

	l.Info("should not appear")
	l.Debug("should not appear")
	if buf.Len() != 0 {
		t.Errorf("low-level messages leaked: %s", buf.String())
	}

	l.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("warn message missing: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"info", InfoLevel, false},
		{"warn", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"bogus", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLevel(%q) should error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q): %v", tt.input, err)
			}
			if level != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, level, tt.want)
			}
		})
	}
}
