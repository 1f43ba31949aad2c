// Package logging は設定から zap のロガーを組み立てます。
package logging

import (
	"context"
	"fmt"

	"github.com/ogurasousui/headcount-dashboard/internal/core/mutation"
	"github.com/ogurasousui/headcount-dashboard/internal/platform/config"
	"go.uber.org/zap"
)

// New は LogConfig に従って *zap.Logger を生成します。
func New(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: parse level %q: %w", cfg.Level, err)
		}
		zcfg.Level = level
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// NoticeLogger は利用者向けの通知をログへ書き出す mutation.Notifier を返します。
// 画面を持たないプロセスで通知の表示先として使います。
func NoticeLogger(logger *zap.Logger) mutation.NotifierFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("notice")
	return func(_ context.Context, n mutation.Notice) {
		fields := []zap.Field{zap.String("title", n.Title), zap.String("description", n.Description)}
		if n.Kind == mutation.NoticeError {
			logger.Error("notice", fields...)
			return
		}
		logger.Info("notice", fields...)
	}
}
