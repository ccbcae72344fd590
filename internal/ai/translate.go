package ai

import (
	"context"
	"fmt"
	"strings"
)

// Translate converts text to the target language via a small deterministic
// completion. Retrieval and reasoning stay monolingual (English); the two
// extra model calls per Hindi request are an accepted latency cost.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	target := "English"
	if strings.HasPrefix(strings.ToLower(targetLang), "hi") {
		target = "Hindi (Devanagari script)"
	}

	result, err := c.Complete(ctx, GenerationRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: "You are a translator. Translate the user's text to " + target + ". Output only the translation, nothing else."},
			{Role: "user", Content: text},
		},
		MaxTokens: len(text)/2 + 128,
	})
	if err != nil {
		return "", fmt.Errorf("translate to %s failed: %w", target, err)
	}
	out := strings.TrimSpace(result.Text)
	if out == "" {
		return "", fmt.Errorf("empty translation")
	}
	return out, nil
}
