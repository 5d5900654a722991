package logger

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDDefault(t *testing.T) {
	if got := RequestID(context.Background()); got != "unknown" {
		t.Fatalf("RequestID = %q, want unknown", got)
	}
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestID(ctx); got != "abc" {
		t.Fatalf("RequestID = %q, want abc", got)
	}
}

func TestHelpersAttachRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := Log
	Log = zap.New(core)
	t.Cleanup(func() { Log = prev })

	ctx := WithRequestID(context.Background(), "req-7")
	Info(ctx, "hello", zap.String("k", "v"))
	Error(ctx, "failed", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	for _, e := range entries {
		if e.ContextMap()["request_id"] != "req-7" {
			t.Errorf("%q: request_id = %v", e.Message, e.ContextMap()["request_id"])
		}
	}
	if entries[1].ContextMap()["error"] != "boom" {
		t.Errorf("error field = %v", entries[1].ContextMap()["error"])
	}
}

func TestInitializeLevels(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })
	Initialize("production", "warn")
	if Log.Core().Enabled(zap.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	Initialize("development", "")
	if !Log.Core().Enabled(zap.DebugLevel) {
		t.Error("development logger should enable debug")
	}
}
