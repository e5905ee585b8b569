package logging

import (
	"context"
	"fmt"
	"log/slog"
	"io"
	"os"
	"strings"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError, LevelFatal:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a configuration string (as read from LOG_LEVEL) to a LogLevel.
// Unrecognized values default to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

var defaultLogger *slog.Logger

// redactedSuffixes are field-key suffixes whose value is never emitted verbatim.
// Matching is case-insensitive against the full key.
var redactedSuffixes = []string{"_secret", "_token", "_key"}

func isRedactedKey(key string) bool {
	lower := strings.ToLower(key)
	if lower == "authorization" {
		return true
	}
	for _, suffix := range redactedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

const redactedPlaceholder = "[REDACTED]"

// TruncateHost returns a host value truncated to its first 10 characters
// followed by an ellipsis, per the credential-redaction policy (spec §4.M).
// Hosts of 10 characters or fewer are returned unchanged.
func TruncateHost(host string) string {
	if len(host) <= 10 {
		return host
	}
	return host[:10] + "…"
}

// TruncateSessionID returns a truncated correlation/session identifier for
// secure logging: first 8 chars + "..." (e.g., "abc12345...").
func TruncateSessionID(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return sessionID[:8] + "..."
}

// redactFields converts a loosely typed field map into slog attributes,
// applying mandatory redaction. Called on every log line that carries fields.
func redactFields(fields map[string]interface{}) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		switch {
		case isRedactedKey(k):
			attrs = append(attrs, slog.String(k, redactedPlaceholder))
		case strings.EqualFold(k, "host"):
			if s, ok := v.(string); ok {
				attrs = append(attrs, slog.String(k, TruncateHost(s)))
				continue
			}
			attrs = append(attrs, slog.Any(k, v))
		default:
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	return attrs
}

// Init initializes the process-wide logger. Output defaults to stderr: stdout
// is reserved for the line-delimited JSON-RPC transport (§6.2) and must never
// carry log text.
func Init(level LogLevel, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}
	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: level.SlogLevel(),
	})
	defaultLogger = slog.New(handler)
}

func init() {
	Init(LevelInfo, os.Stderr)
}

func logInternal(level LogLevel, subsystem string, err error, fields map[string]interface{}, messageFmt string, args ...interface{}) {
	if defaultLogger == nil || !defaultLogger.Enabled(context.Background(), level.SlogLevel()) {
		return
	}

	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	attrs := []slog.Attr{slog.String("subsystem", subsystem), slog.String("level", level.String())}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	attrs = append(attrs, redactFields(fields)...)

	defaultLogger.LogAttrs(context.Background(), level.SlogLevel(), msg, attrs...)
}

// Debug logs a debug message. Request/response bodies may only be included
// here, and only when debug logging has been explicitly enabled.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, nil, messageFmt, args...)
}

// DebugFields logs a debug message with structured, redaction-checked fields.
func DebugFields(subsystem, message string, fields map[string]interface{}) {
	logInternal(LevelDebug, subsystem, nil, fields, message)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, nil, messageFmt, args...)
}

// InfoFields logs an informational message with structured, redaction-checked fields.
func InfoFields(subsystem, message string, fields map[string]interface{}) {
	logInternal(LevelInfo, subsystem, nil, fields, message)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, nil, messageFmt, args...)
}

// WarnFields logs a warning message with structured, redaction-checked fields.
func WarnFields(subsystem, message string, fields map[string]interface{}) {
	logInternal(LevelWarn, subsystem, nil, fields, message)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, nil, messageFmt, args...)
}

// ErrorFields logs an error message with structured, redaction-checked fields.
func ErrorFields(subsystem string, err error, message string, fields map[string]interface{}) {
	logInternal(LevelError, subsystem, err, fields, message)
}

// Fatal logs a fatal error and terminates the process with exit code 1.
// Used only for unrecoverable startup failures (§4.A, §6.5); never called
// from request-handling paths, which must return errors instead.
func Fatal(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelFatal, subsystem, err, nil, messageFmt, args...)
	os.Exit(1)
}

// AuditEvent represents a structured audit log event for security-sensitive
// state transitions (circuit breaker transitions, shutdown phase changes).
type AuditEvent struct {
	Action    string
	Outcome   string // free-form, e.g. "opened", "half_open", "closed", "draining"
	Target    string
	Details   string
	RequestID string
}

// Audit logs a structured audit event, always at INFO level, with a special
// [AUDIT] prefix so log aggregation systems can filter on it.
func Audit(event AuditEvent) {
	parts := make([]string, 0, 4)
	parts = append(parts, "action="+event.Action)
	parts = append(parts, "outcome="+event.Outcome)
	if event.Target != "" {
		parts = append(parts, "target="+event.Target)
	}
	if event.RequestID != "" {
		parts = append(parts, "request_id="+event.RequestID)
	}
	if event.Details != "" {
		parts = append(parts, "details="+event.Details)
	}
	logInternal(LevelInfo, "AUDIT", nil, nil, "[AUDIT] %s", strings.Join(parts, " "))
}
