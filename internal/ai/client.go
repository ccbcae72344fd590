package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationRequest is one completion call against the local model server.
// Zero MaxTokens/Temperature/TopP fall through to server defaults.
type GenerationRequest struct {
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// GenerationResult carries the decoded text plus the signals the cascade
// needs for truncation detection.
type GenerationResult struct {
	Text             string
	FinishReason     string
	CompletionTokens int
}

// Client talks to a local OpenAI-compatible model server (llama.cpp server,
// Ollama, or similar). Wall-clock budgets come from the caller's context.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewClient(baseURL, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Available probes the server's model listing with a short deadline. Used as
// a best-effort load check, not a guarantee that generation will succeed.
func (c *Client) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode < 300
}

// Complete performs one non-streaming chat completion.
func (c *Client) Complete(ctx context.Context, genReq GenerationRequest) (GenerationResult, error) {
	body := map[string]any{
		"model":    c.model,
		"messages": genReq.Messages,
		"stream":   false,
	}
	if genReq.MaxTokens > 0 {
		body["max_tokens"] = genReq.MaxTokens
	}
	if genReq.Temperature > 0 {
		body["temperature"] = genReq.Temperature
	} else {
		body["temperature"] = 0.0
	}
	if genReq.TopP > 0 {
		body["top_p"] = genReq.TopP
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("marshal llm request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return GenerationResult{}, fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("read llm response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return GenerationResult{}, fmt.Errorf("llm response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return GenerationResult{}, fmt.Errorf("parse llm json failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return GenerationResult{}, fmt.Errorf("empty llm choices")
	}
	return GenerationResult{
		Text:             parsed.Choices[0].Message.Content,
		FinishReason:     parsed.Choices[0].FinishReason,
		CompletionTokens: parsed.Usage.CompletionTokens,
	}, nil
}
