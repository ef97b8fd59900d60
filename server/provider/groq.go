package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGroqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

// GroqOption configures a GroqProvider.
type GroqOption func(*GroqProvider)

// GroqProvider calls Groq's OpenAI-compatible chat-completions endpoint.
type GroqProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewGroqProvider creates a Groq client. The per-call deadline comes from
// the caller's context; the http.Client timeout is a backstop.
func NewGroqProvider(apiKey string, opts ...GroqOption) *GroqProvider {
	provider := &GroqProvider{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: defaultGroqEndpoint,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(provider)
		}
	}
	return provider
}

// WithEndpoint overrides the chat-completions URL. Used for tests and for
// pointing the relay at any other OpenAI-compatible server.
func WithEndpoint(endpoint string) GroqOption {
	return func(p *GroqProvider) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			p.endpoint = trimmed
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) GroqOption {
	return func(p *GroqProvider) {
		if client != nil {
			p.client = client
		}
	}
}

type groqRequest struct {
	Model          string              `json:"model"`
	Messages       []Message           `json:"messages"`
	ResponseFormat *groqResponseFormat `json:"response_format,omitempty"`
}

type groqResponseFormat struct {
	Type string `json:"type"`
}

type groqResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []groqChoice `json:"choices"`
}

type groqChoice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type groqErrorEnvelope struct {
	Error groqError `json:"error"`
}

type groqError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

var _ Provider = (*GroqProvider)(nil)

// Complete sends one chat-completion request and returns the first choice's
// message content.
func (p *GroqProvider) Complete(ctx context.Context, req Request) (Response, error) {
	if p.apiKey == "" {
		return Response{}, errors.New("groq api key is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return Response{}, errors.New("model is required")
	}
	if len(req.Messages) == 0 {
		return Response{}, errors.New("at least one message is required")
	}

	payload := groqRequest{
		Model:    req.Model,
		Messages: req.Messages,
	}
	if req.JSONObject {
		payload.ResponseFormat = &groqResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("marshal groq request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build groq request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("call groq api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, parseGroqAPIError(resp)
	}

	var parsed groqResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return Response{}, fmt.Errorf("decode groq response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Response{}, errors.New("groq response contained no choices")
	}

	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return Response{}, errors.New("groq response contained no content")
	}

	return Response{Content: content}, nil
}

func parseGroqAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	message := strings.TrimSpace(string(body))
	if len(body) > 0 {
		var parsed groqErrorEnvelope
		if err := json.Unmarshal(body, &parsed); err == nil && strings.TrimSpace(parsed.Error.Message) != "" {
			message = parsed.Error.Message
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("groq rate limited: %s", message)
	}
	return fmt.Errorf("groq api status %d: %s", resp.StatusCode, message)
}
