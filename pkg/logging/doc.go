// Package logging provides the process-wide structured logger used by every
// subsystem of the gateway. It wraps log/slog with leveled helpers
// (Debug/Info/Warn/Error/Fatal), a subsystem tag on every record, and
// mandatory redaction of credential-shaped fields so that signer and
// configuration code can log freely without leaking secrets.
package logging
