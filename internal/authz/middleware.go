package authz

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avauthz/internal/observability"
)

// HTTPAuthorizer authorizes HTTP requests against the policy engine.
type HTTPAuthorizer struct {
	engine *Engine
	config *Config
	logger observability.Logger
}

// HTTPOption is a functional option for the HTTP authorizer.
type HTTPOption func(*HTTPAuthorizer)

// WithHTTPLogger sets the logger.
func WithHTTPLogger(logger observability.Logger) HTTPOption {
	return func(a *HTTPAuthorizer) {
		a.logger = logger
	}
}

// NewHTTPAuthorizer creates a new HTTP authorizer.
func NewHTTPAuthorizer(engine *Engine, config *Config, opts ...HTTPOption) *HTTPAuthorizer {
	a := &HTTPAuthorizer{
		engine: engine,
		config: config,
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authorize evaluates the request's headers against the engine.
func (a *HTTPAuthorizer) Authorize(r *http.Request) *Decision {
	return a.engine.Evaluate(r.Context(), RequestFromHTTP(r))
}

// Middleware returns middleware enforcing authorization decisions.
// Denied requests receive 403 with a JSON body. Requests are passed
// through unevaluated when authorization is disabled or the path is in
// the skip list.
func (a *HTTPAuthorizer) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a.config != nil && (!a.config.Enabled || a.config.ShouldSkipPath(r.URL.Path)) {
				next.ServeHTTP(w, r)
				return
			}

			decision := a.Authorize(r)
			if !decision.Allowed {
				a.logger.Debug("request denied",
					observability.String("path", r.URL.Path),
					observability.String("method", r.Method),
					observability.String("policy", decision.Policy),
				)
				writeDenied(w, decision)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestFromHTTP builds an authorization request from HTTP headers.
// Multi-value headers contribute their first value only.
func RequestFromHTTP(r *http.Request) *Request {
	headers := make(map[string]string, len(r.Header))
	for key, values := range r.Header {
		if len(values) > 0 {
			headers[strings.ToLower(key)] = values[0]
		}
	}
	return &Request{Headers: headers}
}

// deniedResponse is the JSON body returned for denied requests.
type deniedResponse struct {
	Error  string `json:"error"`
	Policy string `json:"policy,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// writeDenied writes the 403 response for a denied request.
func writeDenied(w http.ResponseWriter, decision *Decision) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(deniedResponse{
		Error:  ErrAccessDenied.Error(),
		Policy: decision.Policy,
		Reason: decision.Reason,
	})
}
