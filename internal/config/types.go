package config

import "akamai-mcp-gateway/pkg/logging"

// Credentials holds the four opaque EdgeGrid strings plus the optional
// account switch key (spec §3.5). Values are loaded once at startup and
// held in a single location; nothing in this package or its callers may
// serialize or log these fields directly — always go through
// logging.InfoFields/ErrorFields, whose redaction recognizes the
// "host"/"*_secret"/"*_token" key shapes used throughout this package.
type Credentials struct {
	Host         string
	ClientToken  string
	ClientSecret string
	AccessToken  string
	AccountKey   string // optional
}

// RedactedHost returns the host value truncated for safe display, per
// spec §3.5 ("the host may appear partially redacted").
func (c Credentials) RedactedHost() string {
	return logging.TruncateHost(c.Host)
}

// Settings holds the tunable reliability parameters bounded by spec §4.A.
type Settings struct {
	LogLevel         logging.LogLevel
	MaxRetries       int
	RetryDelayMs     int
	RequestTimeoutMs int
}

// DefaultSettings returns the settings used when no environment override is
// present, matching the defaults named throughout spec §4.D/§4.G.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:         logging.LevelInfo,
		MaxRetries:       3,
		RetryDelayMs:     1000,
		RequestTimeoutMs: 30000,
	}
}
