package solver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-assistant/llm"
	"screen-assistant/session"
)

func TestAnswer(t *testing.T) {
	var body struct {
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
		MaxTokens int `json:"max_tokens"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "  ```go\nfunc answer() {}\n```  "}},
			},
		})
	}))
	defer server.Close()

	client := New(llm.New("solver", llm.Config{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Model:     "test-model",
		MaxTokens: 1000,
	}))

	history := []session.Exchange{{Question: "earlier question", Answer: "earlier answer"}}
	answer, err := client.Answer(context.Background(), "write a function", history)
	require.NoError(t, err)
	assert.Equal(t, "```go\nfunc answer() {}\n```", answer)

	assert.Equal(t, 1000, body.MaxTokens)
	require.Len(t, body.Messages, 4) // system, prior user, prior assistant, current user
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Contains(t, body.Messages[1].Content[0].Text, "earlier question")
	assert.Equal(t, "earlier answer", body.Messages[2].Content[0].Text)
	assert.Contains(t, body.Messages[3].Content[0].Text, "write a function")
}

func TestAnswerRemoteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	client := New(llm.New("solver", llm.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	}))

	_, err := client.Answer(context.Background(), "question", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solver service error")
}
