package executor

import (
	"encoding/json"

	"akamai-mcp-gateway/internal/registry"
)

const (
	defaultMaxPages = 10
	hardMaxPages    = 100
)

// clampMaxPages applies spec.md:56's "default 10, hard cap 100" rule to a
// caller-supplied maxPages value (0 meaning "not specified").
func clampMaxPages(requested int) int {
	if requested <= 0 {
		return defaultMaxPages
	}
	if requested > hardMaxPages {
		return hardMaxPages
	}
	return requested
}

// pageEnvelope is the shape the pagination driver looks for in a decoded
// response body to find the next cursor and any array fields to merge
// across pages.
type pageEnvelope struct {
	body map[string]interface{}
}

func decodeEnvelope(body []byte) (pageEnvelope, bool) {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return pageEnvelope{}, false
	}
	return pageEnvelope{body: m}, true
}

// nextCursor inspects a decoded body for one of the recognized
// continuation fields, in priority order.
func (e pageEnvelope) nextCursor() (string, bool) {
	candidates := []string{"nextPageToken", "cursor", "nextLink"}
	for _, field := range candidates {
		if v, ok := e.body[field]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	if pagination, ok := e.body["pagination"].(map[string]interface{}); ok {
		if next, ok := pagination["next"].(string); ok && next != "" {
			return next, true
		}
	}
	return "", false
}

func (e pageEnvelope) totalItems() (int, bool) {
	for _, field := range []string{"totalCount", "totalItems"} {
		if v, ok := e.body[field]; ok {
			if f, ok := v.(float64); ok {
				return int(f), true
			}
		}
	}
	return 0, false
}

// mergePages folds subsequent-page bodies into the first page: array
// fields are concatenated across pages, other fields keep the value from
// the last page seen.
func mergePages(pages []map[string]interface{}) map[string]interface{} {
	if len(pages) == 0 {
		return nil
	}
	merged := make(map[string]interface{}, len(pages[0]))
	for k, v := range pages[0] {
		merged[k] = v
	}
	for _, page := range pages[1:] {
		for k, v := range page {
			if arr, ok := v.([]interface{}); ok {
				if existing, ok := merged[k].([]interface{}); ok {
					merged[k] = append(existing, arr...)
					continue
				}
			}
			merged[k] = v
		}
	}
	return merged
}

// paginationDriver runs fetchPage repeatedly, advancing the operation's
// recognized cursor query parameter, until no further cursor is found or
// maxPages is reached. It fetches exactly one page unless both Paginate is
// true and the operation supports pagination (spec.md:99 — "if requested
// and supported").
type paginationDriver struct {
	op        *registry.Operation
	paginate  bool
	maxPages  int
	fetchPage func(args map[string]interface{}) ([]byte, error)
}

func (d *paginationDriver) run(initialArgs map[string]interface{}) (body []byte, pages int, totalItems int, truncated bool, err error) {
	args := cloneArgs(initialArgs)
	limit := clampMaxPages(d.maxPages)

	var decoded []map[string]interface{}
	for pages = 0; pages < limit; pages++ {
		raw, ferr := d.fetchPage(args)
		if ferr != nil {
			return nil, pages, totalItems, false, ferr
		}
		env, ok := decodeEnvelope(raw)
		if !ok {
			if pages == 0 {
				return raw, 1, totalItems, false, nil
			}
			pages++
			break
		}
		decoded = append(decoded, env.body)
		if pages == 0 {
			if t, ok := env.totalItems(); ok {
				totalItems = t
			}
		}

		if !d.paginate || !d.op.SupportsPagination {
			pages++
			break
		}
		cursor, hasMore := env.nextCursor()
		if !hasMore {
			pages++
			break
		}
		if pages+1 >= limit {
			truncated = true
		}
		args[d.op.CursorParam] = cursor
	}

	// A page whose cursor was followed contributes no continuation field to
	// the merged body; only the last page's own continuation (if any) stays.
	for i := 0; i+1 < len(decoded); i++ {
		for _, field := range []string{"nextPageToken", "cursor", "nextLink"} {
			delete(decoded[i], field)
		}
	}

	merged := mergePages(decoded)
	out, merr := json.Marshal(merged)
	if merr != nil {
		return nil, pages, totalItems, truncated, merr
	}
	return out, pages, totalItems, truncated, nil
}

func cloneArgs(args map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}
