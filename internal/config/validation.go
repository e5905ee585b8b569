package config

import "strings"

// recognizedHostSuffixes lists the vendor API hostname suffixes the gateway
// accepts. A host failing all of these fails validation with Error{Field: "host"}.
var recognizedHostSuffixes = []string{".akamaiapis.net", ".luna.akamaiapis.net"}

func hasRecognizedHostSuffix(host string) bool {
	lower := strings.ToLower(host)
	for _, suffix := range recognizedHostSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Validate checks every field of Credentials and Settings, returning the
// first invalid field it finds (spec §4.A: "fails fast on the first invalid
// field, yielding a single structured error naming the field").
func Validate(creds Credentials, settings Settings) error {
	if strings.TrimSpace(creds.Host) == "" {
		return fieldError("host", "must not be empty")
	}
	if !hasRecognizedHostSuffix(creds.Host) {
		return fieldError("host", "does not end in a recognized vendor API suffix")
	}
	if strings.TrimSpace(creds.ClientToken) == "" {
		return fieldError("client_token", "must not be empty")
	}
	if strings.TrimSpace(creds.ClientSecret) == "" {
		return fieldError("client_secret", "must not be empty")
	}
	if strings.TrimSpace(creds.AccessToken) == "" {
		return fieldError("access_token", "must not be empty")
	}

	if settings.MaxRetries < 0 || settings.MaxRetries > 10 {
		return fieldError("max_retries", "must be between 0 and 10")
	}
	if settings.RetryDelayMs < 100 || settings.RetryDelayMs > 10000 {
		return fieldError("retry_delay_ms", "must be between 100 and 10000")
	}
	if settings.RequestTimeoutMs < 1000 || settings.RequestTimeoutMs > 300000 {
		return fieldError("request_timeout_ms", "must be between 1000 and 300000")
	}

	return nil
}
