package persona

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptSectionTags(t *testing.T) {
	prompt := BuildPrompt(PromptInput{
		AgeGroup:    AgeAdult,
		Context:     "the ganga is a long river",
		UserMessage: "tell me about the ganga",
	})

	assert.Contains(t, prompt, "<|system|>")
	assert.Contains(t, prompt, "<|context|>")
	assert.Contains(t, prompt, "<|user|>")
	assert.True(t, strings.HasSuffix(prompt, "<|assistant|>\n"))
	assert.Contains(t, prompt, "Never repeat or output the section tags")
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	prompt := BuildPrompt(PromptInput{UserMessage: "hello"})
	assert.NotContains(t, prompt, "<|conversation|>")
	assert.NotContains(t, prompt, "<|context|>")
}

func TestBuildPromptAgeBranches(t *testing.T) {
	kid := BuildPrompt(PromptInput{AgeGroup: "kid", UserMessage: "hi"})
	teen := BuildPrompt(PromptInput{AgeGroup: "teen", UserMessage: "hi"})
	adult := BuildPrompt(PromptInput{AgeGroup: "adult", UserMessage: "hi"})

	assert.Contains(t, kid, "young child")
	assert.Contains(t, kid, "story")
	assert.Contains(t, teen, "teenager")
	assert.Contains(t, adult, "adult")
	assert.NotEqual(t, kid, teen)
	assert.NotEqual(t, teen, adult)
}

func TestBuildPromptHistoryTruncatedToRecentTurns(t *testing.T) {
	var history []Message
	for i := 0; i < 10; i++ {
		history = append(history, Message{Role: "user", Content: "turn"})
	}
	history[0].Content = "oldest turn"
	history[9].Content = "newest turn"

	prompt := BuildPrompt(PromptInput{History: history, UserMessage: "hi"})
	assert.NotContains(t, prompt, "oldest turn")
	assert.Contains(t, prompt, "newest turn")
}

func TestBuildPromptContextCharCap(t *testing.T) {
	prompt := BuildPrompt(PromptInput{
		Context:          strings.Repeat("x", 5000),
		ContextCharLimit: 100,
		UserMessage:      "hi",
	})
	assert.NotContains(t, prompt, strings.Repeat("x", 101))
	assert.Contains(t, prompt, strings.Repeat("x", 100))
}

func TestBuildPromptContextCapRuneSafe(t *testing.T) {
	prompt := BuildPrompt(PromptInput{
		Context:          strings.Repeat("गंगा नदी ", 200),
		ContextCharLimit: 100,
		UserMessage:      "hi",
	})
	assert.True(t, utf8.ValidString(prompt), "prompt contains invalid UTF-8")
}

func TestBuildPromptReliabilityFraming(t *testing.T) {
	reliable := BuildPrompt(PromptInput{
		Context:         "some passage",
		ContextReliable: true,
		UserMessage:     "hi",
	})
	weak := BuildPrompt(PromptInput{
		Context:         "some passage",
		ContextReliable: false,
		UserMessage:     "hi",
	})

	assert.Contains(t, reliable, "primary source")
	assert.Contains(t, weak, "ignore it completely")
}

func TestBuildPromptHindiInstruction(t *testing.T) {
	prompt := BuildPrompt(PromptInput{
		Lang:            "hi-IN",
		ReplyInLanguage: true,
		UserMessage:     "hi",
	})
	assert.Contains(t, prompt, "Devanagari")

	noInstr := BuildPrompt(PromptInput{Lang: "hi-IN", UserMessage: "hi"})
	assert.NotContains(t, noInstr, "Devanagari")
}

func TestNormalizeAgeGroup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"kid", AgeKid},
		{"Children", AgeKid},
		{"TEEN", AgeTeen},
		{"youth", AgeTeen},
		{"adult", AgeAdult},
		{"", AgeAdult},
		{"grandparent", AgeAdult},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAgeGroup(tt.in), tt.in)
	}
}

func TestIsHindi(t *testing.T) {
	assert.True(t, IsHindi("hi"))
	assert.True(t, IsHindi("hi-IN"))
	assert.True(t, IsHindi("HI"))
	assert.False(t, IsHindi("en"))
	assert.False(t, IsHindi(""))
}
