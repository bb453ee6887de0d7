package initializers

import (
	"strings"

	"go.uber.org/zap"
)

// Log is the process-wide logger. It discards everything until InitLogger runs.
var Log = zap.NewNop().Sugar()

func InitLogger(level string) {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(level, "debug") {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return
	}
	Log = logger.Sugar()
}

// SyncLogger flushes buffered log entries. Call before exit.
func SyncLogger() {
	_ = Log.Sync()
}
