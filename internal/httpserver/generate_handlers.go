package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"go-ai-cache/internal/aiclient"
	"go-ai-cache/internal/defaults"
	"go-ai-cache/internal/models"
	"go-ai-cache/internal/service"
)

const defaultNotice = "AI generation is temporarily unavailable. A default response was provided."

// handleGenerate handles generation requests for a single operation
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	operation := mux.Vars(r)["operation"]
	if !models.KnownOperation(operation) {
		s.writeErrorResponse(w, "Unknown operation: "+operation, http.StatusNotFound)
		return
	}

	var req GenerateRequest
	if err := s.parseRequest(r, &req); err != nil {
		s.writeErrorResponse(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ttl := s.cacheCfg.TTLFor(operation)
	if req.TTLSeconds != nil && *req.TTLSeconds > 0 {
		ttl = time.Duration(*req.TTLSeconds) * time.Second
	}

	maxRetries := 0
	if req.MaxRetries != nil && *req.MaxRetries > 0 {
		maxRetries = *req.MaxRetries
	}

	system, user := aiclient.PromptFor(operation, req.Params)

	result, err := s.service.Execute(r.Context(), service.GenerationRequest{
		Operation: operation,
		Params:    req.Params,
		Generate: func(ctx context.Context) (json.RawMessage, error) {
			return s.client.Complete(ctx, system, user)
		},
		BuildDefault: func() json.RawMessage {
			return defaults.PayloadFor(operation)
		},
		TTL:        ttl,
		MaxRetries: maxRetries,
	})
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := &GenerateResponse{
		Success:  true,
		Payload:  result.Payload,
		Cached:   result.Cached,
		Fallback: result.Fallback,
		Source:   result.Source,
		Key:      result.Key,
	}
	if result.Source == service.SourceDefault {
		resp.Notice = defaultNotice
	}

	s.writeResponse(w, resp)
}

// handleInvalidate handles cache invalidation requests
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	var req InvalidateRequest
	if err := s.parseRequest(r, &req); err != nil {
		s.writeErrorResponse(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if req.Pattern == "" {
		s.writeErrorResponse(w, "Missing required field: pattern", http.StatusBadRequest)
		return
	}

	count := s.service.Invalidate(req.Pattern)

	s.writeResponse(w, &InvalidateResponse{
		Success:     true,
		Invalidated: count,
	})
}
