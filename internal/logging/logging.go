// Package logging builds the process-wide structured logger. PreApply runs
// once per CI invocation rather than as a daemon, so the default core
// writes to stderr; a rotating file sink is only wired up when a log file
// path is configured.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls how the logger is constructed.
type Options struct {
	// JSON selects the JSON encoder (used for --json/non-interactive runs).
	// When false a human-readable console encoder is used.
	JSON bool
	// Verbose lowers the minimum level to Debug.
	Verbose bool
	// FilePath, when non-empty, adds a rotating file sink alongside stderr.
	FilePath string
}

// New builds a *zap.Logger for the given options. It never returns a nil
// logger on success; on failure it returns zap.NewNop() alongside the error
// so callers can still log a warning about the logger itself.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(consoleCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level),
	}

	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		fileEncoder := zapcore.NewJSONEncoder(encCfg)
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), level))
	}

	core := zapcore.NewTee(cores...)
	return zap.New(core), nil
}

// Nop returns a logger that discards everything, used in tests and in
// library callers that haven't opted into logging.
func Nop() *zap.Logger { return zap.NewNop() }
