package common

import (
	"log"
	"strings"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
)

func TestParseLogLevel(t *testing.T) {
	testCases := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for input, want := range testCases {
		got, err := ParseLogLevel(input)
		if err != nil {
			t.Errorf("ParseLogLevel(%s) returned error: %v", input, err)
		}
		if got != want {
			t.Errorf("ParseLogLevel(%s) = %v, want %v", input, got, want)
		}
	}

	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Errorf("Expected error for unknown log level")
	}
}

func TestLoggerLevels(t *testing.T) {
	var sb strings.Builder
	l := &fsKVLogger{name: "test", level: logger.WARNING, logger: log.New(&sb, "", 0)}

	l.Infof("hidden %d", 1)
	l.Warningf("shown %d", 2)

	out := sb.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info message to be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN  | test   | shown 2") {
		t.Errorf("Unexpected log line %q", out)
	}
}

func TestStoreConfigString(t *testing.T) {
	c := &StoreConfig{Root: "data", Codec: "json", SyncWrites: true, LogLevel: "warn"}
	out := c.String()

	for _, want := range []string{"STORE", "data", "json", "true", "LOGGING", "warn"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in config output:\n%s", want, out)
		}
	}
}
