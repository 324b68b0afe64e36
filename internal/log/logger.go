package log

import (
	"os"

	"packetlog/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger: JSON lines, debug/info to stdout and
// warn and above to stderr, both gated by LOG__LEVEL.
func NewLogger(conf *config.Configuration) (*zap.Logger, error) {
	return newLogger(conf, zapcore.AddSync(os.Stdout), zapcore.AddSync(os.Stderr)), nil
}

func newLogger(conf *config.Configuration, stdout, stderr zapcore.WriteSyncer) *zap.Logger {
	lvl := parseLevel(conf.Log.Level)
	atomic := zap.NewAtomicLevelAt(lvl)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.MessageKey = "message"
	encCfg.LevelKey = "level"
	encCfg.TimeKey = "ts"
	encCfg.CallerKey = "caller"
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atomic.Enabled(l) && l < zapcore.WarnLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return atomic.Enabled(l) && l >= zapcore.WarnLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, stdout, low),
		zapcore.NewCore(encoder, stderr, high),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	if conf.App.Name != "" {
		logger = logger.With(zap.String("service", conf.App.Name))
	}
	logger.Info("zap logger initialised", zap.String("level", lvl.String()))
	return logger
}

// parseLevel falls back to info for empty or unknown values.
func parseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zap.InfoLevel
	}
	return lvl
}
