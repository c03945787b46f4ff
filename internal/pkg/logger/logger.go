package logger

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var zapLevels = map[Level]zapcore.Level{
	DEBUG: zapcore.DebugLevel,
	INFO:  zapcore.InfoLevel,
	WARN:  zapcore.WarnLevel,
	ERROR: zapcore.ErrorLevel,
}

// ErrUnknownLevel is returned by ParseLevel for unrecognised names.
var ErrUnknownLevel = errors.New("unknown log level")

// Logger provides structured JSON logging with optional PII redaction.
// Fields are passed as alternating key/value pairs.
type Logger struct {
	z         *zap.Logger
	level     zap.AtomicLevel
	redactPII atomic.Bool
}

var defaultLogger = newWithSyncer(zapcore.Lock(os.Stderr))

func newWithSyncer(ws zapcore.WriteSyncer) *Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, level)
	return newWithCore(core, level)
}

func newWithCore(core zapcore.Core, level zap.AtomicLevel) *Logger {
	l := &Logger{z: zap.New(core), level: level}
	l.redactPII.Store(true)
	return l
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(l Level) { defaultLogger.level.SetLevel(zapLevels[l]) }

// SetRedactPII enables or disables PII redaction for the default logger.
func SetRedactPII(r bool) { defaultLogger.redactPII.Store(r) }

// ParseLevel maps debug, info, warn/warning and error (any case) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Sync flushes any buffered entries of the default logger.
func Sync() error { return defaultLogger.z.Sync() }

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...interface{}) { defaultLogger.log(DEBUG, msg, fields...) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...interface{}) { defaultLogger.log(INFO, msg, fields...) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...interface{}) { defaultLogger.log(WARN, msg, fields...) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...interface{}) { defaultLogger.log(ERROR, msg, fields...) }

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	zl := zapLevels[level]
	if !l.level.Enabled(zl) {
		return
	}

	zf := make([]zap.Field, 0, len(fields)/2)
	// Parse key-value pairs from fields
	for i := 0; i < len(fields)-1; i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		zf = append(zf, l.field(key, fields[i+1]))
	}

	if ce := l.z.Check(zl, msg); ce != nil {
		ce.Write(zf...)
	}
}

func (l *Logger) field(key string, v interface{}) zap.Field {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case error:
		if val == nil {
			return zap.Skip()
		}
		s = val.Error()
	case fmt.Stringer:
		s = val.String()
	default:
		return zap.Any(key, v)
	}
	if l.redactPII.Load() {
		s = redactPIIValue(key, s)
	}
	return zap.String(key, s)
}

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func redactPIIValue(key, val string) string {
	key = strings.ToLower(key)
	if strings.Contains(key, "email") || strings.Contains(key, "recipient") {
		return RedactEmail(val)
	}
	// Redact any embedded emails in generic fields
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
