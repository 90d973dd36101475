package httpserver

import "encoding/json"

// GenerateRequest represents a generation request for one operation.
type GenerateRequest struct {
	Params     map[string]interface{} `json:"params"`
	TTLSeconds *int                   `json:"ttl_seconds,omitempty"`  // Optional cache TTL override
	MaxRetries *int                   `json:"max_retries,omitempty"`  // Optional retry budget override
}

// GenerateResponse represents a generation response.
type GenerateResponse struct {
	Success  bool            `json:"success"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Cached   bool            `json:"cached"`
	Fallback bool            `json:"fallback"`
	Source   string          `json:"source,omitempty"` // generated, cache, or default
	Key      string          `json:"key,omitempty"`
	Notice   string          `json:"notice,omitempty"` // Set when a default payload was served
	Error    string          `json:"error,omitempty"`
}

// InvalidateRequest represents a cache invalidation request.
type InvalidateRequest struct {
	Pattern string `json:"pattern"`
}

// InvalidateResponse represents a cache invalidation response.
type InvalidateResponse struct {
	Success     bool   `json:"success"`
	Invalidated int    `json:"invalidated"`
	Error       string `json:"error,omitempty"`
}
