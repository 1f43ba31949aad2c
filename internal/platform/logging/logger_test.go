package logging

import (
	"context"
	"testing"

	"github.com/ogurasousui/headcount-dashboard/internal/core/mutation"
	"github.com/ogurasousui/headcount-dashboard/internal/platform/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Level(t *testing.T) {
	t.Parallel()

	logger, err := New(config.LogConfig{Level: "warn"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info to be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("expected warn to be enabled")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNoticeLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	notify := NoticeLogger(zap.New(core))

	notify.Notify(context.Background(), mutation.Notice{Kind: mutation.NoticeSuccess, Title: "Employee added", Description: "Ana joined the org"})
	notify.Notify(context.Background(), mutation.Notice{Kind: mutation.NoticeError, Title: "Could not add employee"})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].ContextMap()["title"] != "Employee added" {
		t.Fatalf("unexpected success entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.ErrorLevel || entries[1].LoggerName != "notice" {
		t.Fatalf("unexpected error entry: %+v", entries[1])
	}
}
