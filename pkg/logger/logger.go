package logger

import (
	"os"
	"strings"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config for the global logger
type Config struct {
	// Level is one of debug, info, warn, error
	Level string
	// File is the path of the log file, logs go to stdout when empty
	File string
	// MaxSize of a log file in megabytes before it gets rotated
	MaxSize int
}

// InitGlobalLogger initializes the pingcap/log global logger, which is backed by zap
func InitGlobalLogger(cfg Config) error {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return errors.Annotatef(err, "invalid log level %s", cfg.Level)
		}
	} else {
		level.SetLevel(zapcore.DebugLevel)
	}

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	syncer := getLogWriter(cfg)
	core := zapcore.NewCore(encoder, syncer, level)
	logger := zap.New(core)
	log.ReplaceGlobals(logger, &log.ZapProperties{
		Core:   core,
		Syncer: syncer,
		Level:  level,
	})
	return nil
}

func getLogWriter(cfg Config) zapcore.WriteSyncer {
	if cfg.File == "" {
		return zapcore.Lock(os.Stdout)
	}
	maxSize := cfg.MaxSize
	if maxSize == 0 {
		maxSize = 300
	}
	lumberJackLogger := &lumberjack.Logger{
		Filename: cfg.File,
		MaxSize:  maxSize,
	}
	return zapcore.AddSync(lumberJackLogger)
}
