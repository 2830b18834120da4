package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var L *zap.Logger

func init() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	var err error
	L, err = config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
}

// SetLevel 調整全域 logger 等級，level 無法解析時維持原設定
func SetLevel(level string) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		L.Warn("unknown log level, keeping default", zap.String("level", level))
		return
	}
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(lvl)
	built, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		L.Warn("rebuild logger failed", zap.Error(err))
		return
	}
	L = built
}

// WithComponent 回傳帶有 component 欄位的 logger，供 MQ、handler、service 等使用
func WithComponent(component string) *zap.Logger {
	return L.With(zap.String("component", component))
}

// Sync flushes buffered entries; called on shutdown.
func Sync() {
	_ = L.Sync()
}
