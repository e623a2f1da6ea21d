package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var L = zap.NewNop()

// Init replaces the process logger. Unknown levels fall back to info.
func Init(level string) error {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	L = l
	return nil
}
