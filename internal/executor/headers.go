package executor

import (
	"net/http"
	"strings"

	"akamai-mcp-gateway/pkg/logging"
)

// allowedHeaders is the closed set of caller-supplied headers the executor
// will forward upstream. Anything else is dropped and logged at WARN so a
// misbehaving tool call is visible without ever reaching the wire.
var allowedHeaders = map[string]bool{
	"accept":                   true,
	"content-type":             true,
	"if-match":                 true,
	"if-none-match":            true,
	"prefer":                   true,
	"x-request-id":             true,
	"papi-use-prefixes":        true,
	"x-akamai-contract":        true,
	"x-akamai-group":           true,
	"x-akamai-purge":           true,
	"akamai-signature-algorithm": true,
}

// filterHeaders applies the allowlist to a caller-supplied header map,
// matching names case-insensitively. Kept entries are stored with
// http.Header.Set, so their names come out in canonical form
// ("x-request-id" becomes "X-Request-Id").
func filterHeaders(raw map[string]string) http.Header {
	out := make(http.Header, len(raw))
	for name, value := range raw {
		if !allowedHeaders[strings.ToLower(name)] {
			logging.WarnFields("Executor", "dropping disallowed header", map[string]interface{}{
				"header": name,
			})
			continue
		}
		out.Set(name, value)
	}
	return out
}
