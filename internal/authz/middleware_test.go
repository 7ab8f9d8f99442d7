package authz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func middlewareTestConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultAction: ActionDeny,
		SkipPaths:     []string{"/healthz"},
		Policies: []Policy{
			{
				Name:   "allow-admins",
				Action: ActionAllow,
				Headers: []HeaderRule{
					{Header: "x-role", Match: MatchExact, Value: "admin"},
				},
			},
			{
				Name:   "require-auth",
				Action: ActionDeny,
				Headers: []HeaderRule{
					{Header: "authorization", Match: MatchPresent, Present: false},
				},
			},
		},
	}
}

func TestHTTPAuthorizer_Middleware(t *testing.T) {
	t.Parallel()

	cfg := middlewareTestConfig()
	engine := newTestEngine(t, cfg)
	handler := NewHTTPAuthorizer(engine, cfg).Middleware()(okHandler())

	t.Run("allowed request passes through", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		req.Header.Set("Authorization", "Bearer token")
		req.Header.Set("X-Role", "admin")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("denied request gets 403 with JSON body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body deniedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "access denied", body.Error)
		assert.Equal(t, "require-auth", body.Policy)
	})

	t.Run("skip path bypasses evaluation", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("header names match case-insensitively", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		req.Header.Set("authorization", "x")
		req.Header.Set("x-ROLE", "admin")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHTTPAuthorizer_DisabledPassesThrough(t *testing.T) {
	t.Parallel()

	cfg := middlewareTestConfig()
	engine := newTestEngine(t, cfg)

	disabled := *cfg
	disabled.Enabled = false
	handler := NewHTTPAuthorizer(engine, &disabled).Middleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestFromHTTP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("X-Role", "admin")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Accept", "text/plain")

	authzReq := RequestFromHTTP(req)

	v := authzReq.headerValue("x-role")
	require.NotNil(t, v)
	assert.Equal(t, "admin", *v)

	// Multi-value headers contribute their first value only.
	accept := authzReq.headerValue("accept")
	require.NotNil(t, accept)
	assert.Equal(t, "application/json", *accept)

	assert.Nil(t, authzReq.headerValue("missing"))
}
