// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lzrdig/FineOffsetNET/pkg/config"
)

var log *zap.SugaredLogger
var baseLogger *zap.Logger
var rotator *lumberjack.Logger

var osExit = os.Exit

// Init initializes the package-level logger
func Init(debug bool) error {
	return Configure(config.LogData{Debug: debug})
}

// Configure initializes the package-level logger and, when cfg.File is set,
// tees JSON entries into a size-rotated file.
func Configure(cfg config.LogData) error {
	var zapLogger *zap.Logger
	var err error

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if cfg.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		level := zapcore.InfoLevel
		if cfg.Debug {
			level = zapcore.DebugLevel
		}
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			level,
		)
		opts = append(opts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}

	if cfg.Debug {
		zapLogger, err = zap.NewDevelopment(opts...)
	} else {
		zapLogger, err = zap.NewProduction(opts...)
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

// GetZapLogger returns the base zap logger
func GetZapLogger() *zap.Logger {
	if baseLogger == nil {
		// Fallback logger if not initialized
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		log = baseLogger.Sugar()
	}
	return baseLogger
}

// GetSugaredLogger returns the sugared logger instance
func GetSugaredLogger() *zap.SugaredLogger {
	if log == nil {
		GetZapLogger()
	}
	return log
}

// Sync flushes any buffered log entries and closes the rotated file
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
	if rotator != nil {
		_ = rotator.Close()
	}
}

// Exit flushes the logger and any log file, then ends the process with code.
func Exit(code int) {
	Sync()
	osExit(code)
}

// Package-level convenience functions
func Debug(args ...any) {
	GetSugaredLogger().Debug(args...)
}

func Debugf(template string, args ...any) {
	GetSugaredLogger().Debugf(template, args...)
}

func Info(args ...any) {
	GetSugaredLogger().Info(args...)
}

func Infof(template string, args ...any) {
	GetSugaredLogger().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...any) {
	GetSugaredLogger().Infow(msg, keysAndValues...)
}

func Warn(args ...any) {
	GetSugaredLogger().Warn(args...)
}

func Warnf(template string, args ...any) {
	GetSugaredLogger().Warnf(template, args...)
}

func Error(args ...any) {
	GetSugaredLogger().Error(args...)
}

func Errorf(template string, args ...any) {
	GetSugaredLogger().Errorf(template, args...)
}

func Fatalf(template string, args ...any) {
	GetSugaredLogger().Fatalf(template, args...)
}
