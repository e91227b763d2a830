package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Init replaces the no-op logger with a production JSON logger.
// Call once at process start, before anything else logs.
func Init() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		panic(err)
	}

	log = l
	log.Info("logger initialized")
}

func Info(msg string, fields map[string]any) {
	log.Info(msg, zapFields(fields)...)
}

func Error(msg string, fields map[string]any) {
	log.Error(msg, zapFields(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	log.Fatal(msg, zapFields(fields)...)
}

// Sync flushes buffered entries; call on shutdown.
func Sync() {
	_ = log.Sync()
}

func zapFields(fields map[string]any) []zap.Field {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	return zf
}
