package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelFatal, "FATAL"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		if got := test.level.String(); got != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, expected %s", test.level, got, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTruncateHost(t *testing.T) {
	if got := TruncateHost("akab-xxxxxxxxxx.luna.example.net"); got != "akab-xxxxx…" {
		t.Errorf("TruncateHost long = %q", got)
	}
	if got := TruncateHost("short"); got != "short" {
		t.Errorf("TruncateHost short = %q", got)
	}
}

func TestRedactFields_SecretNeverEmitted(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)
	t.Cleanup(func() { Init(LevelInfo, nil) })

	InfoFields("Signer", "signing request", map[string]interface{}{
		"client_secret":  "super-secret-value",
		"access_token":   "token-value",
		"authorization":  "EG1-HMAC-SHA256 foo",
		"api_key":        "key-value",
		"host":           "akab-xxxxxxxxxx.luna.example.net",
		"request_path":   "/papi/v1/properties",
	})

	out := buf.String()
	for _, leaked := range []string{"super-secret-value", "token-value", "EG1-HMAC-SHA256 foo", "key-value"} {
		if strings.Contains(out, leaked) {
			t.Errorf("log output leaked secret value %q: %s", leaked, out)
		}
	}
	if !strings.Contains(out, "akab-xxxxx…") {
		t.Errorf("expected truncated host in output, got: %s", out)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if decoded["client_secret"] != redactedPlaceholder {
		t.Errorf("client_secret not redacted: %v", decoded["client_secret"])
	}
}

func TestAudit_IncludesActionAndOutcome(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)
	t.Cleanup(func() { Init(LevelInfo, nil) })

	Audit(AuditEvent{Action: "circuit_open", Outcome: "failure", Target: "api.example.com"})

	out := buf.String()
	if !strings.Contains(out, "[AUDIT] action=circuit_open outcome=failure target=api.example.com") {
		t.Errorf("unexpected audit line: %s", out)
	}
}
