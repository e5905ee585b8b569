package config

import (
	"os"
	"path/filepath"
	"strconv"

	"akamai-mcp-gateway/pkg/logging"
)

const defaultEdgercSection = "default"

func defaultEdgercPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".edgerc"
	}
	return filepath.Join(home, ".edgerc")
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Load builds Credentials and Settings from the .edgerc file (EDGERC_PATH,
// default ~/.edgerc; section EDGERC_SECTION, default "default") and the
// process environment, with environment variables taking precedence
// key-by-key (spec §6.1). It validates the merged result and returns the
// first Error encountered, never logging credential values.
func Load() (Credentials, Settings, error) {
	path := envOr("EDGERC_PATH", defaultEdgercPath())
	section := envOr("EDGERC_SECTION", defaultEdgercSection)

	fileValues, err := parseEdgercSection(path, section)
	if err != nil {
		return Credentials{}, Settings{}, err
	}

	creds := Credentials{
		Host:         envOr("AKAMAI_HOST", fileValues["host"]),
		ClientToken:  envOr("AKAMAI_CLIENT_TOKEN", fileValues["client_token"]),
		ClientSecret: envOr("AKAMAI_CLIENT_SECRET", fileValues["client_secret"]),
		AccessToken:  envOr("AKAMAI_ACCESS_TOKEN", fileValues["access_token"]),
		AccountKey:   envOr("AKAMAI_ACCOUNT_KEY", fileValues["account_key"]),
	}

	settings := DefaultSettings()
	settings.LogLevel = logging.ParseLevel(envOr("LOG_LEVEL", settings.LogLevel.String()))
	settings.MaxRetries = envIntOr("MAX_RETRIES", settings.MaxRetries)
	settings.RetryDelayMs = envIntOr("RETRY_DELAY_MS", settings.RetryDelayMs)
	settings.RequestTimeoutMs = envIntOr("REQUEST_TIMEOUT_MS", settings.RequestTimeoutMs)

	if err := Validate(creds, settings); err != nil {
		return Credentials{}, Settings{}, err
	}

	logging.InfoFields("Config", "credentials loaded", map[string]interface{}{
		"host":        creds.Host,
		"has_account": creds.AccountKey != "",
	})

	return creds, settings, nil
}
