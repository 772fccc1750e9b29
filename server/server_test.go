package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/codesmith"
	"github.com/hupe1980/codesmith/core"
	"github.com/hupe1980/codesmith/provider"
)

// countingProvider wraps MockProvider and counts Generate calls.
type countingProvider struct {
	*provider.MockProvider
	calls atomic.Int32
}

func (c *countingProvider) Generate(ctx context.Context, req core.CodeRequest) core.ProviderResult {
	c.calls.Add(1)
	return c.MockProvider.Generate(ctx, req)
}

func newTestServer(t *testing.T, providers ...provider.Provider) *Server {
	t.Helper()
	cs := codesmith.New(func(o *codesmith.Options) {
		o.Providers = providers
	})
	srv, err := New(cs)
	require.NoError(t, err)
	return srv
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestChatReturnsSelectedResponse(t *testing.T) {
	p := provider.NewMockProvider("alpha", "alpha-1")
	p.AddResponse("sort a list", "def sorted_copy(xs):\n    return sorted(xs)\n", "Returns a sorted copy.")
	srv := newTestServer(t, p)
	h := srv.Handler()

	rec := postJSON(t, h, "/api/chat", map[string]string{
		"message": "sort a list", "user_id": "user-1", "language": "python",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	resp := body["response"].(map[string]any)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "alpha", resp["model_used"])
	assert.Contains(t, resp["code"], "sorted_copy")
}

func TestChatFallbackWhenAllProvidersFail(t *testing.T) {
	p := provider.NewMockProvider("alpha", "alpha-1")
	p.FailWith(core.ErrDetailNetworkError)
	srv := newTestServer(t, p)

	rec := postJSON(t, srv.Handler(), "/api/chat", map[string]string{
		"message": "write a fibonacci function in python", "language": "python",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	resp := body["response"].(map[string]any)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, core.FallbackProviderID, resp["model_used"])
	assert.Contains(t, resp["code"], "fibonacci")
}

func TestChatNoViableCandidate(t *testing.T) {
	p := provider.NewMockProvider("alpha", "alpha-1")
	p.FailWith(core.ErrDetailAuthFailure)
	srv := newTestServer(t, p)

	rec := postJSON(t, srv.Handler(), "/api/chat", map[string]string{
		"message": "implement a quantum scheduler", "language": "python",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	resp := body["response"].(map[string]any)
	assert.Equal(t, false, resp["success"])
	assert.NotEmpty(t, resp["error"])
}

func TestChatValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/api/chat", map[string]string{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatResponseCache(t *testing.T) {
	counting := &countingProvider{MockProvider: provider.NewMockProvider("alpha", "alpha-1")}
	counting.AddResponse("sort a list", "def sorted_copy(xs):\n    return sorted(xs)\n", "")
	srv := newTestServer(t, counting)
	h := srv.Handler()

	body := map[string]string{"message": "sort a list", "language": "python"}
	first := decode(t, postJSON(t, h, "/api/chat", body))
	second := decode(t, postJSON(t, h, "/api/chat", body))

	assert.Nil(t, first["cached"])
	assert.Equal(t, true, second["cached"])
	assert.Equal(t, int32(1), counting.calls.Load())
}

func TestChatCacheHitStillRecordsHistory(t *testing.T) {
	counting := &countingProvider{MockProvider: provider.NewMockProvider("alpha", "alpha-1")}
	counting.AddResponse("sort a list", "def sorted_copy(xs):\n    return sorted(xs)\n", "")
	srv := newTestServer(t, counting)
	h := srv.Handler()

	body := map[string]string{"message": "sort a list", "language": "python", "user_id": "user-1"}
	postJSON(t, h, "/api/chat", body)
	cached := decode(t, postJSON(t, h, "/api/chat", body))
	require.Equal(t, true, cached["cached"])

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/user-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["chats"], 2)
	assert.Equal(t, int32(1), counting.calls.Load())
}

func TestCacheKeyFieldBoundaries(t *testing.T) {
	assert.NotEqual(t,
		cacheKey("a|b", "c", "m"),
		cacheKey("a", "b|c", "m"),
	)
	assert.NotEqual(t,
		cacheKey("prompt", "py|auto", ""),
		cacheKey("prompt", "py", "auto|"),
	)
	assert.Equal(t,
		cacheKey("prompt", "python", "auto"),
		cacheKey("prompt", "python", "auto"),
	)
}

func requirePython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
}

func TestExecuteEndpoint(t *testing.T) {
	requirePython(t)
	srv := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/api/execute", map[string]string{
		"code": "print('hi')", "language": "python", "user_id": "user-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["output"], "hi")
	assert.Equal(t, "normal", body["termination_reason"])
}

func TestExecuteUnsupportedLanguage(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/api/execute", map[string]string{
		"code": "puts 'hi'", "language": "ruby",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeWithoutProviders(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/api/analyze", map[string]string{
		"code": "print('hi')", "language": "python",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["analysis"], "provider")
}

func TestProjectLifecycle(t *testing.T) {
	p := provider.NewMockProvider("alpha", "alpha-1")
	srv := newTestServer(t, p)
	h := srv.Handler()

	rec := postJSON(t, h, "/api/projects", map[string]string{
		"description": "a todo api", "tech_stack": "flask", "user_id": "user-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode(t, rec)
	require.Equal(t, true, created["success"])
	id := created["project_id"].(string)
	assert.NotEmpty(t, created["project_name"])
	assert.Greater(t, created["files_created"], float64(0))

	// list
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/user-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode(t, rec)
	require.Len(t, listed["projects"], 1)

	// get
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/user-1/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, id, got["project_id"])
	assert.NotEmpty(t, got["files"])

	// wrong owner
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/user-2/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// update a file
	raw, _ := json.Marshal(map[string]string{
		"user_id": "user-1", "project_id": id, "file_path": "notes.md", "content": "hello",
	})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/projects/files", bytes.NewReader(raw)))
	require.Equal(t, http.StatusOK, rec.Code)

	// traversal rejected
	raw, _ = json.Marshal(map[string]string{
		"user_id": "user-1", "project_id": id, "file_path": "../escape.md", "content": "x",
	})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/projects/files", bytes.NewReader(raw)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// export
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/projects/user-1/%s/export", id), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())

	// delete
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/projects/user-1/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/user-1/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	p := provider.NewMockProvider("alpha", "alpha-1")
	p.AddResponse("sort a list", "def sorted_copy(xs):\n    return sorted(xs)\n", "")
	srv := newTestServer(t, p)
	h := srv.Handler()

	postJSON(t, h, "/api/chat", map[string]string{
		"message": "sort a list", "language": "python", "user_id": "user-1",
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/user-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["chats"], 1)
	assert.Empty(t, body["executions"])
}

func TestHealthEndpoint(t *testing.T) {
	p := provider.NewMockProvider("alpha", "alpha-1")
	srv := newTestServer(t, p)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, []any{"alpha"}, body["providers"])
}
