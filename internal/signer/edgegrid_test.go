package signer

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akamai-mcp-gateway/internal/config"
)

func testCreds() config.Credentials {
	return config.Credentials{
		Host:         "akab-test.luna.akamaiapis.net",
		ClientToken:  "client-tok",
		ClientSecret: "super-secret-value",
		AccessToken:  "access-tok",
	}
}

func TestSign_SetsAuthorizationHeader(t *testing.T) {
	s := New(testCreds())
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	req, err := http.NewRequest(http.MethodGet, "https://akab-test.luna.akamaiapis.net/papi/v1/properties", nil)
	require.NoError(t, err)

	require.NoError(t, s.Sign(req, nil))

	auth := req.Header.Get("Authorization")
	assert.True(t, strings.HasPrefix(auth, authAlgorithm+" "))
	assert.Contains(t, auth, "client_token=client-tok")
	assert.Contains(t, auth, "access_token=access-tok")
	assert.Contains(t, auth, "signature=")
}

func TestSign_NeverEmitsClientSecret(t *testing.T) {
	s := New(testCreds())
	req, err := http.NewRequest(http.MethodGet, "https://akab-test.luna.akamaiapis.net/papi/v1/properties", nil)
	require.NoError(t, err)

	require.NoError(t, s.Sign(req, nil))

	assert.NotContains(t, req.Header.Get("Authorization"), "super-secret-value")
}

func TestSign_DifferentBodiesProduceDifferentSignatures(t *testing.T) {
	s := New(testCreds())
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	req1, _ := http.NewRequest(http.MethodPost, "https://akab-test.luna.akamaiapis.net/papi/v1/properties", nil)
	req2, _ := http.NewRequest(http.MethodPost, "https://akab-test.luna.akamaiapis.net/papi/v1/properties", nil)

	require.NoError(t, s.Sign(req1, []byte(`{"a":1}`)))
	require.NoError(t, s.Sign(req2, []byte(`{"a":2}`)))

	assert.NotEqual(t, req1.Header.Get("Authorization"), req2.Header.Get("Authorization"))
}
