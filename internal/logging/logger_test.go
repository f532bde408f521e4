package logging

import (
	"context"
	"log/slog"
	"testing"

	"go.uber.org/zap"
)

func TestInit_LevelFallback(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	log, err := Init("nonsense", "dev")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer log.Closer()
	if log.Level.Level() != zap.InfoLevel {
		t.Errorf("expected info fallback, got %v", log.Level.Level())
	}

	log, err = Init("warn", "prod")
	if err != nil {
		t.Fatalf("Init prod: %v", err)
	}
	defer log.Closer()
	if log.Level.Level() != zap.WarnLevel {
		t.Errorf("expected warn, got %v", log.Level.Level())
	}
	if slog.Default().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected slog default to honour the zap level")
	}
}
