package gpt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completionServer records the last request and replies with a fixed body
type completionServer struct {
	*httptest.Server
	lastAuth    string
	lastRequest completionRequest
}

func newCompletionServer(t *testing.T, status int, body string) *completionServer {
	t.Helper()

	cs := &completionServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.lastAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cs.lastRequest))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(cs.Close)
	return cs
}

const successBody = `{
	"model": "gpt-4o-mini-2024-07-18",
	"usage": {"prompt_tokens": 57, "completion_tokens": 12, "total_tokens": 69},
	"choices": [{"message": {"role": "assistant", "content": "Hello there."}, "finish_reason": "stop", "index": 0}]
}`

func TestClient_Complete(t *testing.T) {
	server := newCompletionServer(t, http.StatusOK, successBody)
	client := NewClient("shared-key", server.URL, nil)

	history := []Message{
		SystemMessage("You are a terse robot."),
		UserMessage("Say hello."),
	}
	completion, err := client.Complete(context.Background(), 42, "gpt-4o-mini", history, 1.0, 4096)
	require.NoError(t, err)

	assert.Equal(t, "Hello there.", completion.Content)
	assert.Equal(t, FinishReasonStop, completion.FinishReason)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", completion.Model)
	assert.Equal(t, int64(57), completion.Usage.PromptTokens)
	assert.Equal(t, int64(12), completion.Usage.CompletionTokens)

	assert.Equal(t, "Bearer shared-key", server.lastAuth)
	assert.Equal(t, "gpt-4o-mini", server.lastRequest.Model)
	assert.Equal(t, history, server.lastRequest.Messages)
	assert.Equal(t, 4096, server.lastRequest.MaxTokens)
	assert.False(t, server.lastRequest.Stream)
}

func TestClient_CompleteUsesCustomKey(t *testing.T) {
	server := newCompletionServer(t, http.StatusOK, successBody)
	client := NewClient("shared-key", server.URL, map[int64]string{42: "own-key"})

	_, err := client.Complete(context.Background(), 42, "gpt-4o-mini", []Message{UserMessage("hi")}, 1.0, 4096)
	require.NoError(t, err)
	assert.Equal(t, "Bearer own-key", server.lastAuth)

	// Other users still ride the shared credential.
	_, err = client.Complete(context.Background(), 7, "gpt-4o-mini", []Message{UserMessage("hi")}, 1.0, 4096)
	require.NoError(t, err)
	assert.Equal(t, "Bearer shared-key", server.lastAuth)
}

func TestClient_CompleteAPIError(t *testing.T) {
	server := newCompletionServer(t, http.StatusTooManyRequests, `{
		"error": {"message": "You exceeded your current quota.", "type": "insufficient_quota"}
	}`)
	client := NewClient("shared-key", server.URL, nil)

	_, err := client.Complete(context.Background(), 42, "gpt-4o-mini", []Message{UserMessage("hi")}, 1.0, 4096)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrorCauseQuota, apiErr.Cause())
	assert.Contains(t, apiErr.Error(), "insufficient_quota")
}

func TestClient_CompleteErrorInOKBody(t *testing.T) {
	// Some compatible providers report failures inside a 200 response.
	server := newCompletionServer(t, http.StatusOK, `{
		"error": {"message": "The server is overloaded.", "type": "server_error"}
	}`)
	client := NewClient("shared-key", server.URL, nil)

	_, err := client.Complete(context.Background(), 42, "gpt-4o-mini", []Message{UserMessage("hi")}, 1.0, 4096)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrorCauseServer, apiErr.Cause())
}

func TestClient_CompleteNoChoices(t *testing.T) {
	server := newCompletionServer(t, http.StatusOK, `{"model": "gpt-4o-mini", "choices": []}`)
	client := NewClient("shared-key", server.URL, nil)

	_, err := client.Complete(context.Background(), 42, "gpt-4o-mini", []Message{UserMessage("hi")}, 1.0, 4096)
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "no choices")
}

func TestClient_CompleteMalformedBody(t *testing.T) {
	server := newCompletionServer(t, http.StatusBadGateway, "<html>bad gateway</html>")
	client := NewClient("shared-key", server.URL, nil)

	_, err := client.Complete(context.Background(), 42, "gpt-4o-mini", []Message{UserMessage("hi")}, 1.0, 4096)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestClient_HasCustomKey(t *testing.T) {
	client := NewClient("shared-key", "", map[int64]string{42: "own-key"})

	assert.True(t, client.HasCustomKey(42))
	assert.False(t, client.HasCustomKey(7))
}

func TestAPIError_CauseClassification(t *testing.T) {
	assert.Equal(t, ErrorCauseQuota, (&APIError{Type: "insufficient_quota"}).Cause())
	assert.Equal(t, ErrorCauseServer, (&APIError{Type: "server_error"}).Cause())
	assert.Equal(t, ErrorCauseRateLimited, (&APIError{Type: "requests"}).Cause())
	assert.Equal(t, ErrorCauseUnknown, (&APIError{Type: "invalid_request_error"}).Cause())
}
