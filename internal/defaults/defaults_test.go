package defaults

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadFor(t *testing.T) {
	tests := []struct {
		operation string
		want      string
	}{
		{"toc", `{"chapters":[],"total_chapters":0}`},
		{"questions", `{"questions":[]}`},
		{"draft", `{"content":"","sections":[]}`},
		{"something-else", `{}`},
		{"", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			payload := PayloadFor(tt.operation)
			assert.True(t, json.Valid(payload))
			assert.JSONEq(t, tt.want, string(payload))
		})
	}
}
