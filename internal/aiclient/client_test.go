package aiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-ai-cache/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.AIConfig{
		BaseURL:               server.URL,
		Model:                 "test-model",
		APIKeyEnv:             "TEST_AI_KEY_UNSET",
		RequestTimeoutSeconds: 5,
	}
	return NewClient(cfg, zap.NewNop())
}

func TestClient_Complete(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"chapters\":[],\"total_chapters\":0}"}}]}`))
	})

	payload, err := client.Complete(context.Background(), "system", "user")

	require.NoError(t, err)
	assert.JSONEq(t, `{"chapters":[],"total_chapters":0}`, string(payload))
}

func TestClient_Complete_NonOKStatusIsHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	})

	_, err := client.Complete(context.Background(), "system", "user")

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.HTTPStatus())
	assert.Contains(t, httpErr.Error(), "429")
}

func TestClient_Complete_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), "system", "user")
	assert.Error(t, err)
}

func TestClient_Complete_NonJSONContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"not json at all"}}]}`))
	})

	_, err := client.Complete(context.Background(), "system", "user")
	assert.Error(t, err)
}

func TestPromptFor(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		params     map[string]interface{}
		wantInUser string
	}{
		{
			name:       "toc",
			operation:  "toc",
			params:     map[string]interface{}{"summary": "A book about AI"},
			wantInUser: "A book about AI",
		},
		{
			name:      "questions",
			operation: "questions",
			params: map[string]interface{}{
				"chapter_title": "Getting Started",
				"synopsis":      "The basics",
			},
			wantInUser: "Getting Started",
		},
		{
			name:      "draft",
			operation: "draft",
			params: map[string]interface{}{
				"chapter_title": "Getting Started",
				"responses":     []string{"answer one", "answer two"},
			},
			wantInUser: "answer one",
		},
		{
			name:       "unknown operation",
			operation:  "summarize",
			params:     map[string]interface{}{"prompt": "do the thing"},
			wantInUser: "do the thing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, user := PromptFor(tt.operation, tt.params)
			assert.NotEmpty(t, system)
			assert.Contains(t, user, tt.wantInUser)
		})
	}
}

func TestPromptFor_MissingParams(t *testing.T) {
	system, user := PromptFor("toc", nil)
	assert.NotEmpty(t, system)
	assert.NotEmpty(t, user)
}
