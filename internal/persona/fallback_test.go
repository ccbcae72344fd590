package persona

import (
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func containsDevanagari(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Devanagari, r) {
			return true
		}
	}
	return false
}

func TestFallbackGreetingKidIsStory(t *testing.T) {
	reply := FallbackReply(FallbackInput{
		Prompt:   "hello",
		Name:     "Asha",
		AgeGroup: "kid",
		Lang:     "en",
	})
	assert.NotEmpty(t, reply)
	assert.Contains(t, reply, "Asha")
	assert.Contains(t, reply, "story")
}

func TestFallbackGreetingDetection(t *testing.T) {
	greetings := []string{"hello", "Hi", "hey there", "namaste", "नमस्ते", "hello, chacha!"}
	for _, g := range greetings {
		reply := FallbackReply(FallbackInput{Prompt: g, AgeGroup: "adult", Lang: "en"})
		assert.Contains(t, reply, "ChaCha", g)
	}

	// A question is not a greeting even if it mentions the river.
	reply := FallbackReply(FallbackInput{Prompt: "why is the ganga polluted", AgeGroup: "adult", Lang: "en"})
	assert.NotContains(t, reply, "Ask me")
}

func TestFallbackHindiRepliesAreDevanagari(t *testing.T) {
	for _, prompt := range []string{"नमस्ते", "गंगा क्या है"} {
		reply := FallbackReply(FallbackInput{
			Prompt:   prompt,
			AgeGroup: "kid",
			Lang:     "hi-IN",
		})
		assert.NotEmpty(t, reply)
		assert.True(t, containsDevanagari(reply), "expected Devanagari in reply to %q", prompt)
	}
}

func TestFallbackReliableContextUsesSnippet(t *testing.T) {
	reply := FallbackReply(FallbackInput{
		Prompt:          "what lives in the ganga",
		AgeGroup:        "adult",
		Lang:            "en",
		HasContext:      true,
		ContextReliable: true,
		Snippet:         "Gangetic dolphins live in the main channel of the river.",
	})
	assert.Contains(t, reply, "Gangetic dolphins")
}

func TestFallbackSnippetTruncated(t *testing.T) {
	long := strings.Repeat("water ", 100)
	reply := FallbackReply(FallbackInput{
		Prompt:          "question",
		AgeGroup:        "adult",
		Lang:            "en",
		HasContext:      true,
		ContextReliable: true,
		Snippet:         long,
	})
	assert.Contains(t, reply, "...")
	assert.Less(t, len(reply), len(long))
}

func TestFallbackDevanagariSnippetTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("गंगा नदी हमारी जीवनरेखा है ", 30))
	reply := FallbackReply(FallbackInput{
		Prompt:          "गंगा के बारे में बताओ",
		AgeGroup:        "adult",
		Lang:            "hi-IN",
		HasContext:      true,
		ContextReliable: true,
		Snippet:         long,
	})
	assert.True(t, utf8.ValidString(reply), "reply contains invalid UTF-8")
	assert.Contains(t, reply, "...")
}

func TestFallbackUnreliableContextIgnoresSnippet(t *testing.T) {
	reply := FallbackReply(FallbackInput{
		Prompt:          "question",
		AgeGroup:        "teen",
		Lang:            "en",
		HasContext:      true,
		ContextReliable: false,
		Snippet:         "completely irrelevant text",
	})
	assert.NotContains(t, reply, "completely irrelevant text")
	assert.NotEmpty(t, reply)
}

func TestFallbackGenericBranchesDiffer(t *testing.T) {
	kid := FallbackReply(FallbackInput{Prompt: "question", AgeGroup: "kid", Lang: "en"})
	teen := FallbackReply(FallbackInput{Prompt: "question", AgeGroup: "teen", Lang: "en"})
	adult := FallbackReply(FallbackInput{Prompt: "question", AgeGroup: "adult", Lang: "en"})
	assert.NotEqual(t, kid, teen)
	assert.NotEqual(t, teen, adult)
	assert.NotEqual(t, kid, adult)
}
