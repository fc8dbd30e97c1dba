// Package logging configures the process-wide zap logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logTmFmt = "2006-01-02 15:04:05.000"

// Options selects the console level and the optional rotating log file.
// MaxSize is in megabytes, MaxAge in days.
type Options struct {
	Verbose    bool
	Debug      bool
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	FileLevel  string
	Console    io.Writer
}

// Init builds the logger and installs it as zap's global.
func Init(opts Options) *zap.Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	cores := []zapcore.Core{
		zapcore.NewCore(GetEncoder(), zapcore.AddSync(console), consoleLevel(opts)),
	}
	if opts.File != "" {
		cores = append(cores, zapcore.NewCore(GetEncoder(), GetWriteSyncer(opts), GetLevelEnabler(opts.FileLevel)))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	zap.ReplaceGlobals(logger)
	return logger
}

// Sync flushes buffered entries of the global logger.
func Sync() {
	_ = zap.L().Sync()
}

func consoleLevel(opts Options) zapcore.Level {
	switch {
	case opts.Debug:
		return zapcore.DebugLevel
	case opts.Verbose:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}

// GetEncoder returns the bracketed console encoder shared by all outputs.
func GetEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(
		zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller_line",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    cEncodeLevel,
			EncodeTime:     cEncodeTime,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   cEncodeCaller,
		})
}

// GetWriteSyncer returns a rotating file writer.
func GetWriteSyncer(opts Options) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSize,
		MaxAge:     opts.MaxAge,
		MaxBackups: opts.MaxBackups,
	})
}

// GetLevelEnabler maps a level name to a zap level, defaulting to info.
func GetLevelEnabler(logLevel string) zapcore.Level {
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func cEncodeLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + level.CapitalString() + "]")
}

func cEncodeTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format(logTmFmt) + "]")
}

func cEncodeCaller(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + caller.TrimmedPath() + "]")
}
