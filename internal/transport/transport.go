// Package transport builds the single shared *http.Client every outbound
// call to Akamai's management APIs goes through: TLS 1.2 minimum, a
// bounded connection pool, and a hard cap on response body size so a
// misbehaving upstream can't exhaust gateway memory.
package transport

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second
	defaultTimeout      = 30 * time.Second

	// MaxBodyBytes bounds how much of a response body the gateway will
	// read before giving up, regardless of Content-Length.
	MaxBodyBytes = 64 << 20 // 64 MiB
)

// New builds the shared client. timeout overrides defaultTimeout when
// non-zero, letting callers honor a configured request timeout.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConns:        maxIdleConns,
			MaxIdleConnsPerHost: maxIdleConnsPerHost,
			IdleConnTimeout:     idleConnTimeout,
		},
		Timeout: timeout,
	}
}

// ErrPayloadTooLarge is returned by ReadBody when a response body exceeds
// MaxBodyBytes.
type ErrPayloadTooLarge struct {
	Limit int64
}

func (e *ErrPayloadTooLarge) Error() string {
	return fmt.Sprintf("response body exceeds %d byte limit", e.Limit)
}

// ReadBody reads resp.Body up to MaxBodyBytes+1 bytes, returning
// ErrPayloadTooLarge if the body didn't fit.
func ReadBody(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxBodyBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(data)) > MaxBodyBytes {
		return nil, &ErrPayloadTooLarge{Limit: MaxBodyBytes}
	}
	return data, nil
}
