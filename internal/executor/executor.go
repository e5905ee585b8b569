package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"akamai-mcp-gateway/internal/breaker"
	"akamai-mcp-gateway/internal/cache"
	"akamai-mcp-gateway/internal/config"
	"akamai-mcp-gateway/internal/metrics"
	"akamai-mcp-gateway/internal/ratelimit"
	"akamai-mcp-gateway/internal/registry"
	"akamai-mcp-gateway/internal/retry"
	"akamai-mcp-gateway/internal/signer"
	"akamai-mcp-gateway/internal/transport"
	"akamai-mcp-gateway/pkg/logging"
)

// Executor runs the full request pipeline for a single tool call: header
// filtering, parameter validation, path/query construction, cache lookup,
// rate limiting, signing, retrying, circuit breaking, and (for operations
// that support it) pagination.
type Executor struct {
	creds    config.Credentials
	settings config.Settings

	signer    *signer.Signer
	limiter   *ratelimit.Limiter
	breakers  *breaker.Manager
	respCache *cache.Cache
	client    *http.Client
	baseURL   string // scheme://host, overridable in tests

	metrics *metrics.Collector
}

// New builds an Executor. coll may be nil, in which case all metrics
// recording is skipped — useful for tests that don't care about
// instrumentation.
func New(creds config.Credentials, settings config.Settings, coll *metrics.Collector) *Executor {
	return &Executor{
		creds:     creds,
		settings:  settings,
		signer:    signer.New(creds),
		limiter:   ratelimit.New(),
		breakers:  breaker.NewManager(coll),
		respCache: cache.New(cache.DefaultCapacity, cache.DefaultTTL),
		client:    transport.New(time.Duration(settings.RequestTimeoutMs) * time.Millisecond),
		baseURL:   "https://" + creds.Host,
		metrics:   coll,
	}
}

// Execute runs req.Operation with req.Arguments against the configured
// Akamai host.
func (e *Executor) Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error) {
	op := req.Operation
	start := time.Now()

	if err := validateParams(op, req.Arguments); err != nil {
		return nil, err
	}

	headerArgs := make(map[string]string, len(op.HeaderParams)+len(req.Headers))
	for _, p := range op.HeaderParams {
		if v, ok := req.Arguments[p.Name]; ok {
			headerArgs[p.Name] = stringifyScalar(v)
		}
	}
	for name, v := range req.Headers {
		headerArgs[name] = v
	}
	headers := filterHeaders(headerArgs)

	var bodyBytes []byte
	if op.RequestBody != nil {
		if raw, ok := req.Arguments["body"]; ok {
			encoded, err := json.Marshal(raw)
			if err != nil {
				return nil, newError(KindValidation, "request body is not valid JSON")
			}
			bodyBytes = encoded
		} else if op.RequestBody.Required {
			return nil, newError(KindValidation, "missing required request body")
		}
	}

	driver := &paginationDriver{
		op:       op,
		paginate: req.Paginate,
		maxPages: req.MaxPages,
		fetchPage: func(args map[string]interface{}) ([]byte, error) {
			return e.fetchOne(ctx, op, args, headers, bodyBytes)
		},
	}

	body, pages, totalItems, truncated, err := driver.run(req.Arguments)
	durationMs := time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}

	if e.metrics != nil && pages > 1 {
		e.metrics.PaginationPagesTotal.Add(float64(pages))
		e.metrics.PaginationItemsTotal.Add(float64(totalItems))
		e.metrics.PaginationDurationMs.Observe(float64(durationMs))
	}

	return &ExecutionResult{
		StatusCode:   http.StatusOK,
		Body:         body,
		PagesFetched: pages,
		TotalItems:   totalItems,
		Truncated:    truncated,
		DurationMs:   durationMs,
	}, nil
}

// fetchOne performs exactly one HTTP round trip, applying cache, rate
// limit, circuit breaker, signing, and retry policy around it.
func (e *Executor) fetchOne(ctx context.Context, op *registry.Operation, args map[string]interface{}, headers http.Header, bodyBytes []byte) ([]byte, error) {
	path, err := buildPath(op, args)
	if err != nil {
		return nil, err
	}
	query := buildQuery(op, args)

	cacheable := op.Method == http.MethodGet
	var key string
	if cacheable {
		key = cacheKey(op.Method, path, query, headers)
		if cached, ok := e.respCache.Get(key); ok {
			if e.metrics != nil {
				e.metrics.CacheHitsTotal.Inc()
			}
			return cached, nil
		}
		if e.metrics != nil {
			e.metrics.CacheMissesTotal.Inc()
		}
	}

	host := e.creds.Host
	br := e.breakers.For(host)
	if !br.Allow() {
		return nil, &Error{Kind: KindCircuitOpen, Message: fmt.Sprintf("circuit open for host %s", host)}
	}

	waitStart := time.Now()
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindTimeout, Message: "rate limiter wait cancelled", Cause: err}
	}
	if e.metrics != nil && time.Since(waitStart) > time.Millisecond {
		e.metrics.RateLimitWaitsTotal.Inc()
	}

	url := fmt.Sprintf("%s%s?%s", e.baseURL, path, query.Encode())

	shouldRetry := func(resp *http.Response, err error) bool {
		if err != nil {
			return true
		}
		return resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode == http.StatusRequestTimeout ||
			resp.StatusCode >= 500
	}

	policy := retry.Policy{
		MaxRetries: e.settings.MaxRetries,
		BaseDelay:  time.Duration(e.settings.RetryDelayMs) * time.Millisecond,
	}
	attempts := 0
	if e.metrics != nil {
		policy.OnAttempt = func(attempt int, retrying bool) {
			attempts = attempt + 1
			e.metrics.RetryAttemptsTotal.WithLabelValues(op.ToolName).Inc()
		}
	}

	resp, err := retry.Do(ctx, policy, shouldRetry, func(ctx context.Context) (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, op.Method, url, bodyReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		for name, values := range headers {
			for _, v := range values {
				httpReq.Header.Add(name, v)
			}
		}
		if len(bodyBytes) > 0 && httpReq.Header.Get("Content-Type") == "" {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		if err := e.signer.Sign(httpReq, bodyBytes); err != nil {
			return nil, err
		}
		return e.client.Do(httpReq)
	})

	if e.metrics != nil && attempts > 1 {
		if err != nil || shouldRetry(resp, err) {
			e.metrics.RetryOutcomesTotal.WithLabelValues("exhausted").Inc()
		} else {
			e.metrics.RetryOutcomesTotal.WithLabelValues("recovered").Inc()
		}
	}

	if err != nil {
		br.Failure()
		e.recordUpstreamCall(0)
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()
	e.recordUpstreamCall(resp.StatusCode)

	data, err := transport.ReadBody(resp)
	if err != nil {
		br.Failure()
		return nil, newError(KindPayloadTooLarge, err.Error())
	}

	if resp.StatusCode >= 500 {
		br.Failure()
	} else {
		br.Success()
	}

	if classified := classifyStatus(resp.StatusCode, resp.Header); classified != nil {
		return data, classified
	}

	if cacheable && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		e.respCache.Set(key, data)
	}

	return data, nil
}

// recordUpstreamCall tags an upstream call by its status class ("2xx",
// "4xx", "5xx", or "error" for a status of 0 meaning the call never got a
// response).
func (e *Executor) recordUpstreamCall(status int) {
	if e.metrics == nil {
		return
	}
	class := "error"
	if status > 0 {
		class = fmt.Sprintf("%dxx", status/100)
	}
	e.metrics.UpstreamCallsTotal.WithLabelValues(class).Inc()
}

func bodyReader(b []byte) io.Reader {
	if len(b) == 0 {
		return nil
	}
	return bytes.NewReader(b)
}

func classifyTransportError(err error) error {
	logging.WarnFields("Executor", "upstream call failed after retries", map[string]interface{}{"error": err.Error()})
	return &Error{Kind: KindUpstream, Message: "upstream request failed", Cause: err}
}

// classifyStatus maps a terminal (post-retry) HTTP status to the typed
// error taxonomy. Only 2xx and redirect (3xx) statuses pass through with a
// nil error; every 4xx/5xx is a typed Error so a caller never mistakes a
// client or server error for success.
func classifyStatus(status int, header http.Header) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindAuth, Message: "authentication rejected", StatusCode: status}
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: "resource not found", StatusCode: status}
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Message: "rate limited by upstream", StatusCode: status, RetryAfter: retryAfterHint(header)}
	case status == http.StatusRequestTimeout:
		return &Error{Kind: KindTimeout, Message: "upstream request timed out", StatusCode: status}
	case status >= 500:
		return &Error{Kind: KindUpstream, Message: "upstream server error", StatusCode: status}
	case status >= 400:
		return &Error{Kind: KindUpstream, Message: "upstream rejected the request", StatusCode: status}
	default:
		return nil
	}
}

func retryAfterHint(header http.Header) time.Duration {
	if header == nil {
		return 0
	}
	if v := header.Get("Retry-After"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			return d
		}
	}
	return 0
}
