package predict

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fakeChatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "the cat")
		assert.Contains(t, string(body), "test-model")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLLMPredictor_Predict(t *testing.T) {
	srv := fakeChatServer(t, `{"words":["sat.","sat","Ran away","","is","was"]}`)
	p := NewLLMPredictor(LLMConfig{BaseURL: srv.URL, Model: "test-model"}, zap.NewNop())

	words, err := p.Predict(context.Background(), "the cat")

	require.NoError(t, err)
	assert.Equal(t, []string{"sat", "Ran", "is"}, words)
}

func TestLLMPredictor_BlankInput(t *testing.T) {
	p := NewLLMPredictor(LLMConfig{BaseURL: "http://127.0.0.1:1", Model: "m"}, zap.NewNop())
	words, err := p.Predict(context.Background(), " ")
	assert.NoError(t, err)
	assert.Empty(t, words)
}

func TestWordsFromCompletion_IgnoresGarbage(t *testing.T) {
	assert.Empty(t, wordsFromCompletion("not json"))
	assert.Empty(t, wordsFromCompletion(`{"other":1}`))
}
