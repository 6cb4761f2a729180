// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// apiguard writes lifecycle, rejection, and client-pushed log events to
// `<root>/logs/apiguard.log`.  When running in an interactive TTY we tee
// the same events to stdout through a console encoder.  Rotation,
// compression, and retention are handled by Lumberjack.
//
// Levels use the API vocabulary (debug, info, warning, error, critical)
// so operators configure the service with the same names clients push to
// /logs.  ParseLevel maps them onto zap:
//
//	debug → debug   info → info   warning → warn
//	error → error   critical → error (tagged critical=true by LogAt)
//
// Usage
// -----
//
//	log, err := logger.New(cfg.Paths.Root, cfg.Log.Level, runningInTTY())
//	if err != nil { … }
//	log.Infow("upstream configured", "url", cfg.API.Upstream)
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Errors are written to the same sink via `ErrorOutput`.
// • Oxford commas, two spaces after periods.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AdeptTravel/apiguard/internal/validation"
)

// level is shared by every core New builds; SetLevel adjusts it live.
var level = zap.NewAtomicLevel()

// LevelCritical is accepted from clients and config; zap has no
// equivalent that neither panics nor exits.
const LevelCritical = "critical"

// ParseLevel converts an API log level name (any case) to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	if !validation.IsLogLevel(name) {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	case "error", LevelCritical:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, nil
	}
}

// New returns a *zap.SugaredLogger that writes JSON to <root>/logs.  When
// tee == true, a console core is also attached.  The logger is installed
// as the process-wide default via zap.ReplaceGlobals.
func New(rootDir, levelName string, tee bool) (*zap.SugaredLogger, error) {
	lvl, err := ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	level.SetLevel(lvl)

	logDir := filepath.Join(rootDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "apiguard.log"),
		MaxSize:    50, // MB
		MaxBackups: 7,
		MaxAge:     14, // days
		Compress:   true,
	}

	z := zap.New(
		build(zapcore.AddSync(fileSink), level, tee),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
	).Sugar()

	// Make this the global logger so zap.S() works everywhere after startup.
	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "level", strings.ToLower(levelName), "tee", tee)
	return z, nil
}

// SetLevel changes the level of every logger built by New without a
// restart.  Unknown names leave the current level in place.
func SetLevel(name string) error {
	lvl, err := ParseLevel(name)
	if err != nil {
		return err
	}
	level.SetLevel(lvl)
	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
}

// build assembles the JSON core over sink plus an optional stdout core.
func build(sink zapcore.WriteSyncer, lvl zapcore.LevelEnabler, tee bool) zapcore.Core {
	enc := encoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(enc), sink, lvl),
	}
	if tee {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(enc),
			zapcore.AddSync(os.Stdout),
			lvl,
		))
	}
	return zapcore.NewTee(cores...)
}

// LogAt writes msg at the zap level matching name.  Unknown names log at
// INFO with the original name attached, so nothing pushed is dropped.
func LogAt(log *zap.SugaredLogger, name, msg string, kv ...any) {
	lvl, err := ParseLevel(name)
	if err != nil {
		kv = append(kv, "raw_level", name)
	}
	if strings.EqualFold(name, LevelCritical) {
		kv = append(kv, "critical", true)
	}
	switch lvl {
	case zapcore.DebugLevel:
		log.Debugw(msg, kv...)
	case zapcore.WarnLevel:
		log.Warnw(msg, kv...)
	case zapcore.ErrorLevel:
		log.Errorw(msg, kv...)
	default:
		log.Infow(msg, kv...)
	}
}
