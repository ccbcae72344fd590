package persona

import (
	"strings"
)

// Age groups recognized by the mascot persona.
const (
	AgeKid   = "kid"
	AgeTeen  = "teen"
	AgeAdult = "adult"
)

// Message is one client-supplied conversation turn. History is trusted as-is
// and truncated to the most recent turns when assembling the prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PromptInput carries everything the assembler needs for one request.
type PromptInput struct {
	Name             string
	AgeGroup         string
	Lang             string
	History          []Message
	Context          string
	ContextReliable  bool
	ContextCharLimit int
	UserMessage      string
	ReplyInLanguage  bool // instruct the model to answer in Lang directly
}

const maxHistoryTurns = 6

// truncateRunes caps s at max characters without ever splitting a rune, so
// Devanagari text survives truncation intact. max <= 0 means no cap.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// NormalizeAgeGroup maps free-form client input to one of the three personas.
func NormalizeAgeGroup(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "kid", "kids", "child", "children":
		return AgeKid
	case "teen", "teens", "teenager", "youth":
		return AgeTeen
	default:
		return AgeAdult
	}
}

// IsHindi reports whether a language hint asks for Hindi output.
func IsHindi(lang string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(lang)), "hi")
}

// BuildPrompt produces a single delimited prompt with explicit section tags.
// Retrieval reliability gates the context framing: reliable context is the
// primary source, weak context is explicitly discounted so the model answers
// from general knowledge instead of complaining about irrelevant passages.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("<|system|>\n")
	b.WriteString(systemInstruction(in))
	b.WriteString("\nNever repeat or output the section tags (<|system|>, <|conversation|>, <|context|>, <|user|>, <|assistant|>).\n")

	history := in.History
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	if len(history) > 0 {
		b.WriteString("<|conversation|>\n")
		for _, m := range history {
			role := strings.TrimSpace(m.Role)
			if role == "" {
				role = "user"
			}
			b.WriteString(role)
			b.WriteString(": ")
			b.WriteString(strings.TrimSpace(m.Content))
			b.WriteString("\n")
		}
	}

	ctx := truncateRunes(strings.TrimSpace(in.Context), in.ContextCharLimit)
	if ctx != "" {
		b.WriteString("<|context|>\n")
		b.WriteString(ctx)
		b.WriteString("\n")
	}

	b.WriteString("<|user|>\n")
	b.WriteString(strings.TrimSpace(in.UserMessage))
	b.WriteString("\n<|assistant|>\n")
	return b.String()
}

func systemInstruction(in PromptInput) string {
	var b strings.Builder
	b.WriteString("You are ChaCha, a friendly mascot who teaches people about the river Ganga, ")
	b.WriteString("river pollution, and what everyday actions keep rivers clean.")

	if name := strings.TrimSpace(in.Name); name != "" {
		b.WriteString(" The person you are talking to is called ")
		b.WriteString(name)
		b.WriteString("; address them by name once, warmly.")
	}

	switch NormalizeAgeGroup(in.AgeGroup) {
	case AgeKid:
		b.WriteString(" Speak to a young child: very simple words, short sentences, a warm story shape with a beginning, a middle, and one concrete action the child can do today. Keep it under five sentences.")
	case AgeTeen:
		b.WriteString(" Speak to a teenager: casual and direct, a couple of real facts, no lecturing, and one practical thing they can actually do. Keep it under seven sentences.")
	default:
		b.WriteString(" Speak to an adult: clear and respectful, factual, concise, with one actionable suggestion.")
	}

	if strings.TrimSpace(in.Context) != "" {
		if in.ContextReliable {
			b.WriteString(" Use the reference passages in the context section as your primary source; ground your answer in them.")
		} else {
			b.WriteString(" The context section may be unrelated to the question; if it does not help, ignore it completely and answer from general knowledge. Never say that the context does not mention something.")
		}
	}

	if in.ReplyInLanguage && IsHindi(in.Lang) {
		b.WriteString(" Reply entirely in Hindi, written in Devanagari script.")
	}
	return b.String()
}
