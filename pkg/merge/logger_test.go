package merge

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name           string
		level          LogLevel
		expectedOutput []string
		notExpected    []string
	}{
		{
			name:  "debug level shows all messages",
			level: LogDebug,
			expectedOutput: []string{
				"level=debug", `msg="debug message"`,
				"level=info", `msg="info message"`,
				"level=warning", `msg="warn message"`,
				"level=error", `msg="error message"`,
			},
		},
		{
			name:  "info level hides debug messages",
			level: LogInfo,
			expectedOutput: []string{
				"level=info",
				"level=warning",
				"level=error",
			},
			notExpected: []string{"level=debug", "debug message"},
		},
		{
			name:           "error level shows only errors",
			level:          LogError,
			expectedOutput: []string{"level=error"},
			notExpected:    []string{"level=info", "level=warning"},
		},
		{
			name:        "off hides everything",
			level:       LogOff,
			notExpected: []string{"message"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(&buf, tt.level)
			l.Debug("debug message")
			l.Info("info message")
			l.Warn("warn message")
			l.Error("error message")

			output := buf.String()
			for _, expected := range tt.expectedOutput {
				if !strings.Contains(output, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, output)
				}
			}
			for _, notExpected := range tt.notExpected {
				if strings.Contains(output, notExpected) {
					t.Errorf("expected output not to contain %q, got:\n%s", notExpected, output)
				}
			}
		})
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogDebug)

	child := l.WithField("render_id", "abc").WithFields(Fields{"part": "word/document.xml"})
	child.Info("rendered %d parts", 2)
	l.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	for _, want := range []string{"render_id=abc", "part=word/document.xml", `msg="rendered 2 parts"`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("child line missing %q: %s", want, lines[0])
		}
	}
	if strings.Contains(lines[1], "render_id") {
		t.Errorf("parent logger picked up child fields: %s", lines[1])
	}
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LogInfo)
	child := l.WithField("k", "v")
	if child.IsDebugMode() {
		t.Error("info logger should not be in debug mode")
	}

	l.SetLevel(LogDebug)
	if !child.IsDebugMode() {
		t.Error("derived logger should follow its parent's level")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogDebug,
		"INFO":    LogInfo,
		"warn":    LogWarn,
		"warning": LogWarn,
		"error":   LogError,
		"off":     LogOff,
		"":        LogInfo,
		"chatty":  LogInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
