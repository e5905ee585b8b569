package executor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akamai-mcp-gateway/internal/config"
	"akamai-mcp-gateway/internal/registry"
)

func testListOperation() *registry.Operation {
	return &registry.Operation{
		OperationID: "listProperties",
		ToolName:    "akamai_papi_listproperties",
		Method:      "GET",
		Path:        "/papi/v1/properties",
		Product:     "papi",
		QueryParams: []registry.ParameterDescriptor{
			{Name: "limit", Location: registry.LocationQuery, Schema: registry.Schema{Kind: registry.SchemaScalar, Type: "integer"}},
		},
		SupportsPagination: true,
		Pagination:         registry.PaginationCursor,
		CursorParam:        "cursor",
	}
}

func testGetOperation() *registry.Operation {
	return &registry.Operation{
		OperationID: "getProperty",
		ToolName:    "akamai_papi_getproperty",
		Method:      "GET",
		Path:        "/papi/v1/properties/{propertyId}",
		Product:     "papi",
		PathParams: []registry.ParameterDescriptor{
			{Name: "propertyId", Location: registry.LocationPath, Required: true, Schema: registry.Schema{Kind: registry.SchemaScalar, Type: "string"}},
		},
	}
}

func newTestExecutor(t *testing.T, srv *httptest.Server) *Executor {
	t.Helper()
	creds := config.Credentials{Host: "example.test", ClientToken: "ct", ClientSecret: "cs", AccessToken: "at"}
	e := New(creds, config.DefaultSettings(), nil)
	e.baseURL = srv.URL
	e.limiter.Wait(context.Background()) // drain initial burst token so tests run fast and deterministic
	return e
}

func TestExecute_MissingRequiredParamFailsValidation(t *testing.T) {
	e := newTestExecutor(t, httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach upstream")
	})))

	_, err := e.Execute(context.Background(), ExecutionRequest{Operation: testGetOperation(), Arguments: map[string]interface{}{}})
	require.Error(t, err)
	var execErr *Error
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, KindValidation, execErr.Kind)
}

func TestExecute_SimpleGetReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/papi/v1/properties/prp_123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"propertyId":"prp_123"}`))
	}))
	defer srv.Close()

	e := newTestExecutor(t, srv)
	result, err := e.Execute(context.Background(), ExecutionRequest{
		Operation: testGetOperation(),
		Arguments: map[string]interface{}{"propertyId": "prp_123"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"propertyId":"prp_123"}`, string(result.Body))
	assert.Equal(t, 1, result.PagesFetched)
}

func TestExecute_CachesSecondIdenticalGet(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"propertyId":"prp_123"}`))
	}))
	defer srv.Close()

	e := newTestExecutor(t, srv)
	ctx := context.Background()
	req := ExecutionRequest{Operation: testGetOperation(), Arguments: map[string]interface{}{"propertyId": "prp_123"}}

	_, err := e.Execute(ctx, req)
	require.NoError(t, err)
	_, err = e.Execute(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestExecute_FollowsCursorPagination(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("cursor") == "" {
			w.Write([]byte(`{"items":["a"],"cursor":"page2"}`))
			return
		}
		w.Write([]byte(`{"items":["b"]}`))
	}))
	defer srv.Close()

	e := newTestExecutor(t, srv)
	result, err := e.Execute(context.Background(), ExecutionRequest{
		Operation: testListOperation(),
		Arguments: map[string]interface{}{},
		Paginate:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, result.PagesFetched)
	assert.JSONEq(t, `{"items":["a","b"]}`, string(result.Body))
}

func TestExecute_SupportsPaginationButNotRequestedFetchesOnePage(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"items":["a"],"cursor":"page2"}`))
	}))
	defer srv.Close()

	e := newTestExecutor(t, srv)
	result, err := e.Execute(context.Background(), ExecutionRequest{
		Operation: testListOperation(),
		Arguments: map[string]interface{}{},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, result.PagesFetched)
}

func TestExecute_UpstreamAuthFailureClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad credentials"}`))
	}))
	defer srv.Close()

	e := newTestExecutor(t, srv)
	_, err := e.Execute(context.Background(), ExecutionRequest{
		Operation: testGetOperation(),
		Arguments: map[string]interface{}{"propertyId": "prp_123"},
	})
	require.Error(t, err)
	var execErr *Error
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, KindAuth, execErr.Kind)
}

func TestExecute_UnclassifiedClientErrorIsNotTreatedAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"conflicting update"}`))
	}))
	defer srv.Close()

	e := newTestExecutor(t, srv)
	_, err := e.Execute(context.Background(), ExecutionRequest{
		Operation: testGetOperation(),
		Arguments: map[string]interface{}{"propertyId": "prp_123"},
	})
	require.Error(t, err)
	var execErr *Error
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, KindUpstream, execErr.Kind)
	assert.Equal(t, http.StatusConflict, execErr.StatusCode)
}

func TestExecute_RequestTimeoutIsRetriedThenClassified(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusRequestTimeout)
	}))
	defer srv.Close()

	e := newTestExecutor(t, srv)
	e.settings.MaxRetries = 2
	_, err := e.Execute(context.Background(), ExecutionRequest{
		Operation: testGetOperation(),
		Arguments: map[string]interface{}{"propertyId": "prp_123"},
	})
	require.Error(t, err)
	var execErr *Error
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, KindTimeout, execErr.Kind)
	assert.Equal(t, 3, calls)
}
