package main

import (
	"encoding/json"
	"net/http"

	"github.com/vyrodovalexey/avauthz/internal/authz"
	"github.com/vyrodovalexey/avauthz/internal/observability"
)

// checkRequest is the decision API request body. Header keys are matched
// case-insensitively; a key present with an empty value counts as a
// present header.
type checkRequest struct {
	Headers map[string]string `json:"headers"`
}

// checkHandler evaluates posted header sets against the policy engine.
type checkHandler struct {
	engine *authz.Engine
	logger observability.Logger
}

func newCheckHandler(engine *authz.Engine, logger observability.Logger) *checkHandler {
	return &checkHandler{engine: engine, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *checkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	decision := h.engine.Evaluate(r.Context(), authz.NewRequest(req.Headers))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(decision); err != nil {
		h.logger.Warn("failed to write decision response", observability.Error(err))
	}
}
