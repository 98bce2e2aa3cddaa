package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLog builds the process logger. Debug adds a development console core;
// a non-empty path adds a rotating JSON file. With neither, the logger
// discards everything.
func NewLog(path string, debug bool) *zap.Logger {
	var cores []zapcore.Core

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
		console := zap.NewDevelopmentEncoderConfig()
		console.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(console),
			zapcore.Lock(os.Stderr),
			level,
		))
	}

	if path != "" {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		})
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			w,
			level,
		))
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewTee(cores...))
}
