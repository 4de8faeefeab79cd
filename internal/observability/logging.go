package observability

import (
    "strings"

    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"

    "github.com/unclebandit/outreach-backend/internal/config"
)

// NewLogger creates a structured zap.Logger configured via env settings.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
    level := zapcore.InfoLevel
    if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
        level = zapcore.InfoLevel
    }

    zapCfg := zap.Config{
        Level:    zap.NewAtomicLevelAt(level),
        Encoding: "json",
        EncoderConfig: zapcore.EncoderConfig{
            MessageKey: "message",
            LevelKey:   "level",
            TimeKey:    "ts",
            EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
                enc.AppendString(l.String())
            },
            EncodeTime: zapcore.ISO8601TimeEncoder,
        },
        OutputPaths:      []string{"stdout"},
        ErrorOutputPaths: []string{"stderr"},
    }

    return zapCfg.Build()
}
