package executor

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// cacheKey fingerprints a GET request deterministically: method, path,
// canonicalized (sorted) query, and the subset of forwarded headers that
// affect representation (Accept, Prefer), so two calls differing only in
// header or query parameter order hit the same cache entry.
func cacheKey(method, path string, query url.Values, headers http.Header) string {
	h := sha256.New()
	h.Write([]byte(strings.ToUpper(method)))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(canonicalQuery(query)))
	h.Write([]byte{0})
	h.Write([]byte(canonicalHeaders(headers)))
	return hex.EncodeToString(h.Sum(nil))
}

func canonicalQuery(query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		for _, v := range values {
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(v)
			b.WriteByte('&')
		}
	}
	return b.String()
}

var cacheRelevantHeaders = []string{"accept", "prefer"}

func canonicalHeaders(headers http.Header) string {
	var b strings.Builder
	for _, name := range cacheRelevantHeaders {
		if v := headers.Get(name); v != "" {
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(v)
			b.WriteByte('&')
		}
	}
	return b.String()
}
