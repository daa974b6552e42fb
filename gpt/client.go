// Package gpt is a minimal client for OpenAI-compatible chat completion APIs.
// It sends one conversation and returns one completed message; streaming,
// retries and timeouts are left to the caller and the http.Client.
package gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// DefaultAPIURL is the standard chat completions endpoint, overridable to
// point at a proxy or a compatible provider.
const DefaultAPIURL = "https://api.openai.com/v1/chat/completions"

// Role is the sender role attached to a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Message is a single role-tagged message in a conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage creates a system-role message
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// AssistantMessage creates an assistant-role message
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// UserMessage creates a user-role message
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Usage is the token accounting of one completion
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Completion is the successful result of one completion call
type Completion struct {
	Model        string
	Content      string
	FinishReason string
	Usage        Usage
}

type completionRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Stream           bool      `json:"stream"`
	Temperature      float64   `json:"temperature"`
	TopP             float64   `json:"top_p"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	PresencePenalty  float64   `json:"presence_penalty"`
	ReplyCount       int       `json:"n"`
	MaxTokens        int       `json:"max_tokens"`
}

type completionChoice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
	Index        int     `json:"index"`
}

// completionResponse covers both the success and the error shape of the API;
// exactly one of Error and Choices is populated.
type completionResponse struct {
	Error   *APIError          `json:"error"`
	Model   string             `json:"model"`
	Usage   Usage              `json:"usage"`
	Choices []completionChoice `json:"choices"`
}

// Client calls an OpenAI-compatible chat completions endpoint. It holds the
// shared API key plus per-user overrides for users who bring their own key.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	customKeys map[int64]string
}

// NewClient creates a completion client. An empty apiURL selects the default
// endpoint; customKeys may be nil.
func NewClient(apiKey, apiURL string, customKeys map[int64]string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		httpClient: &http.Client{},
		apiURL:     apiURL,
		apiKey:     apiKey,
		customKeys: customKeys,
	}
}

// HasCustomKey reports whether the user's requests are billed to their own key
func (c *Client) HasCustomKey(userID int64) bool {
	_, ok := c.customKeys[userID]
	return ok
}

// Complete sends a conversation and returns the next message. The userID
// selects the bearer credential; provider-reported failures are returned as
// *APIError, transport and decoding failures as ordinary errors.
func (c *Client) Complete(ctx context.Context, userID int64, model string, history []Message, temperature float64, maxTokens int) (*Completion, error) {
	body, err := json.Marshal(completionRequest{
		Model:            model,
		Messages:         history,
		Stream:           false,
		Temperature:      temperature,
		TopP:             1.0,
		FrequencyPenalty: 0.0,
		PresencePenalty:  0.0,
		ReplyCount:       1,
		MaxTokens:        maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	apiKey := c.apiKey
	if key, ok := c.customKeys[userID]; ok {
		apiKey = key
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion response: %w", err)
	}

	// Error responses arrive both with error status codes and, from some
	// providers, embedded in a 200 body; decode before checking the code.
	var decoded completionResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode completion response (status %d): %w", resp.StatusCode, err)
	}

	if decoded.Error != nil {
		return nil, decoded.Error
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("completion response contained no choices (status %d)", resp.StatusCode)
	}

	choice := decoded.Choices[0]
	if choice.FinishReason != FinishReasonStop {
		log.Warnf("Completion for user %d finished with reason %q", userID, choice.FinishReason)
	}

	return &Completion{
		Model:        decoded.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage:        decoded.Usage,
	}, nil
}
