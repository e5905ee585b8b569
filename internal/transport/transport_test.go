package transport

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SetsMinimumTLSVersion(t *testing.T) {
	client := New(5 * time.Second)
	transport := client.Transport.(*http.Transport)
	assert.Equal(t, uint16(0x0303), transport.TLSClientConfig.MinVersion) // tls.VersionTLS12
}

func TestReadBody_WithinLimitSucceeds(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader("hello"))}
	data, err := ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestReadBody_ExceedsLimitFails(t *testing.T) {
	big := bytes.Repeat([]byte("a"), MaxBodyBytes+10)
	resp := &http.Response{Body: io.NopCloser(bytes.NewReader(big))}

	_, err := ReadBody(resp)
	require.Error(t, err)
	var tooLarge *ErrPayloadTooLarge
	assert.ErrorAs(t, err, &tooLarge)
}
