package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigure_Levels(t *testing.T) {
	defer Configure("info", "json")

	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"WARNING", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"info", logrus.InfoLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}

	for _, tt := range tests {
		Configure(tt.level, "json")
		if got := Logger.GetLevel(); got != tt.want {
			t.Errorf("Configure(%q): level %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestWithFields_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	Configure("info", "json")

	WithFields(logrus.Fields{"backend": "contour", "width": 500}).Info("detected")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "detected" {
		t.Errorf("msg: got %v", entry["msg"])
	}
	if entry["backend"] != "contour" {
		t.Errorf("backend: got %v", entry["backend"])
	}
}

func TestConfigure_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer func() {
		SetOutput(os.Stderr)
		Configure("info", "json")
	}()
	Configure("debug", "text")

	Debug("tracing")
	if !strings.Contains(buf.String(), "msg=tracing") {
		t.Errorf("text output missing message: %q", buf.String())
	}
}
