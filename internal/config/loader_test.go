package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAkamaiEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AKAMAI_HOST", "AKAMAI_CLIENT_TOKEN", "AKAMAI_CLIENT_SECRET",
		"AKAMAI_ACCESS_TOKEN", "AKAMAI_ACCOUNT_KEY", "LOG_LEVEL",
		"MAX_RETRIES", "RETRY_DELAY_MS", "REQUEST_TIMEOUT_MS",
		"EDGERC_SECTION", "EDGERC_PATH",
	} {
		os.Unsetenv(key)
	}
}

func writeEdgerc(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".edgerc")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	clearAkamaiEnv(t)
	path := writeEdgerc(t, `; a comment
[default]
host = akab-aaaaaaaaaaaaaaaa.luna.akamaiapis.net
client_token = akab-tok
client_secret = akab-secret
access_token = akab-access
account_key = 1-ABCDE
`)
	t.Setenv("EDGERC_PATH", path)

	creds, settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "akab-aaaaaaaaaaaaaaaa.luna.akamaiapis.net", creds.Host)
	assert.Equal(t, "1-ABCDE", creds.AccountKey)
	assert.Equal(t, 3, settings.MaxRetries)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearAkamaiEnv(t)
	path := writeEdgerc(t, `[default]
host = akab-fromfile.luna.akamaiapis.net
client_token = file-token
client_secret = file-secret
access_token = file-access
`)
	t.Setenv("EDGERC_PATH", path)
	t.Setenv("AKAMAI_HOST", "akab-fromenv.luna.akamaiapis.net")

	creds, _, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "akab-fromenv.luna.akamaiapis.net", creds.Host)
	assert.Equal(t, "file-token", creds.ClientToken)
}

func TestLoad_MissingHostFailsFast(t *testing.T) {
	clearAkamaiEnv(t)
	path := writeEdgerc(t, "[default]\nclient_token=x\nclient_secret=y\naccess_token=z\n")
	t.Setenv("EDGERC_PATH", path)

	_, _, err := Load()
	require.Error(t, err)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "host", cfgErr.Field)
}

func TestLoad_RejectsOutOfBoundsRetryDelay(t *testing.T) {
	clearAkamaiEnv(t)
	path := writeEdgerc(t, "[default]\nhost=akab-a.luna.akamaiapis.net\nclient_token=x\nclient_secret=y\naccess_token=z\n")
	t.Setenv("EDGERC_PATH", path)
	t.Setenv("RETRY_DELAY_MS", "50")

	_, _, err := Load()
	require.Error(t, err)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "retry_delay_ms", cfgErr.Field)
}

func TestLoad_ErrorNeverContainsSecretValue(t *testing.T) {
	clearAkamaiEnv(t)
	path := writeEdgerc(t, "[default]\nhost=not-a-vendor-host.example.com\nclient_token=x\nclient_secret=super-secret\naccess_token=z\n")
	t.Setenv("EDGERC_PATH", path)

	_, _, err := Load()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "super-secret")
}
