package app

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Standard field names for structured log output.
const (
	fieldTimestamp  = "timestamp"
	fieldLevel      = "level"
	fieldCaller     = "caller"
	fieldMessage    = "message"
	fieldStacktrace = "stacktrace"
)

// LogConfig configures session logging.
type LogConfig struct {
	// Development switches the console core to a colored human-readable
	// encoder at debug level.
	Development bool `yaml:"development"`

	// File is the rotating log file path. Empty disables the file core.
	File string `yaml:"file"`

	// MaxSizeMB is the rotation threshold. Default 100.
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is how many rotated files to keep. Default 5.
	MaxBackups int `yaml:"max_backups"`

	// MaxAgeDays bounds rotated file retention. Default 30.
	MaxAgeDays int `yaml:"max_age_days"`
}

// DefaultLogConfig returns the standard logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}
}

// NewLogger builds a zap logger that tees a console core and, when a file
// path is set, a JSON file core with lumberjack rotation.
func NewLogger(cfg LogConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if cfg.Development {
		level = zapcore.DebugLevel
	}

	var consoleEncoder zapcore.Encoder
	if cfg.Development {
		consoleEncoder = zapcore.NewConsoleEncoder(consoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(jsonEncoderConfig())
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stderr), level),
	}

	if cfg.File != "" {
		writer := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 30),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(jsonEncoderConfig()),
			zapcore.AddSync(writer),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// jsonEncoderConfig returns the encoder config with stable field names for
// structured log processing.
func jsonEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        fieldTimestamp,
		LevelKey:       fieldLevel,
		CallerKey:      fieldCaller,
		MessageKey:     fieldMessage,
		StacktraceKey:  fieldStacktrace,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// consoleEncoderConfig is the human-readable variant for development runs.
func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := jsonEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}
