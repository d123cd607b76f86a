package common

import "testing"

func TestNewSilentLogger(t *testing.T) {
	logger := NewSilentLogger()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}

	// Must be safe to log through without touching console or disk.
	logger.Info().Str("key", "value").Msg("silent")
	logger.Error().Msg("silent error")
}

func TestNewLoggerFromConfig_ConsoleOnly(t *testing.T) {
	logger := NewLoggerFromConfig(LoggingConfig{
		Level:   "debug",
		Outputs: []string{"console"},
	})
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewLoggerFromConfig_DefaultLevel(t *testing.T) {
	logger := NewLoggerFromConfig(LoggingConfig{
		Outputs: []string{"console"},
	})
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestWithCorrelationId(t *testing.T) {
	logger := NewSilentLogger()
	scoped := logger.WithCorrelationId("abc-123")
	if scoped == nil {
		t.Fatal("expected non-nil scoped logger")
	}
	if scoped == logger {
		t.Error("expected a new logger instance")
	}

	scoped.Info().Msg("scoped")
}
