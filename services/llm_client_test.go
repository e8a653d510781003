package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"limitfree/config"
)

func TestLLMClient_Complete(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"ok\":true}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
		}`))
	}))
	defer srv.Close()

	cfg := config.Config{
		LLM: config.LLMConfig{Provider: "test", Model: "test-model"},
		LLMProviders: map[string]config.LLMProvider{
			"test": {APIKey: "test-key", BaseURL: srv.URL + "/v1"},
		},
	}
	client := NewLLMClient(cfg, zap.NewNop())

	out, err := client.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	assert.Equal(t, "test-model", got["model"])
	msgs, ok := got["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
	assert.Equal(t, "user prompt", msgs[1].(map[string]interface{})["content"])
}

func TestLLMClient_Unconfigured(t *testing.T) {
	client := NewLLMClient(config.Config{LLM: config.LLMConfig{Provider: "missing"}}, zap.NewNop())
	_, err := client.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrLLMUnavailable)
}
