package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chacha-backend/internal/ai"
	"chacha-backend/internal/config"
	"chacha-backend/internal/model"
	"chacha-backend/internal/rag"
)

type fakeRetriever struct {
	ready  bool
	result rag.RetrievalResult
}

func (f *fakeRetriever) Ready() bool { return f.ready }

func (f *fakeRetriever) Retrieve(query string, k int) rag.RetrievalResult { return f.result }

// mockLLM scripts completion results in order and fails the test if
// generation happens when it must not.
type mockLLM struct {
	t              *testing.T
	available      bool
	forbidGenerate bool
	completeErr    error
	queue          []ai.GenerationResult
	completeCalls  int
	prompts        []string
	translations   map[string]string
	translateCalls int
}

func (m *mockLLM) Model() string { return "mock-model" }

func (m *mockLLM) Available(ctx context.Context) bool { return m.available }

func (m *mockLLM) Complete(ctx context.Context, req ai.GenerationRequest) (ai.GenerationResult, error) {
	if m.forbidGenerate {
		m.t.Fatal("model generation attempted on a forced fallback path")
	}
	m.completeCalls++
	m.prompts = append(m.prompts, req.Messages[0].Content)
	if m.completeErr != nil {
		return ai.GenerationResult{}, m.completeErr
	}
	require.NotEmpty(m.t, m.queue, "unscripted completion call")
	result := m.queue[0]
	m.queue = m.queue[1:]
	return result, nil
}

func (m *mockLLM) StreamComplete(ctx context.Context, req ai.GenerationRequest, onChunk func(string) error) (string, error) {
	if m.forbidGenerate {
		m.t.Fatal("model generation attempted on a forced fallback path")
	}
	m.completeCalls++
	m.prompts = append(m.prompts, req.Messages[0].Content)
	if m.completeErr != nil {
		return "", m.completeErr
	}
	require.NotEmpty(m.t, m.queue, "unscripted stream call")
	result := m.queue[0]
	m.queue = m.queue[1:]
	for _, word := range strings.SplitAfter(result.Text, " ") {
		if err := onChunk(word); err != nil {
			return "", err
		}
	}
	return result.Text, nil
}

func (m *mockLLM) Translate(ctx context.Context, text, targetLang string) (string, error) {
	m.translateCalls++
	if out, ok := m.translations[text]; ok {
		return out, nil
	}
	return text, nil
}

type captureSink struct {
	entries chan model.InteractionLog
}

func (s *captureSink) Publish(ctx context.Context, entry model.InteractionLog) error {
	s.entries <- entry
	return nil
}

func newService(llm LLMClient, retriever Retriever, llmCfg config.LLMConfig) *MascotService {
	ragCfg := config.RAGConfig{ContextChars: 1000, TopK: 3}
	return NewMascotService(llmCfg, ragCfg, retriever, llm, nil)
}

func reliableRetriever(chunks ...string) *fakeRetriever {
	return &fakeRetriever{
		ready: true,
		result: rag.RetrievalResult{
			Chunks:    chunks,
			Distances: []float32{0.1},
			Score:     0.9,
			Reliable:  true,
		},
	}
}

func hasDevanagari(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Devanagari, r) {
			return true
		}
	}
	return false
}

func TestAskForcedFallbackNeverGenerates(t *testing.T) {
	llm := &mockLLM{t: t, available: true, forbidGenerate: true}
	svc := newService(llm, reliableRetriever("chunk"), config.LLMConfig{})

	resp, err := svc.Ask(context.Background(), AskRequest{Prompt: "why is the river dirty", Fallback: true})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Result)
	assert.False(t, resp.LLMUsed)
	assert.Equal(t, "fallback", resp.Source)
}

func TestAskConfigForcedFallbackNeverGenerates(t *testing.T) {
	llm := &mockLLM{t: t, available: true, forbidGenerate: true}
	svc := newService(llm, reliableRetriever("chunk"), config.LLMConfig{ForceFallback: true})

	resp, err := svc.Ask(context.Background(), AskRequest{Prompt: "question"})
	require.NoError(t, err)
	assert.False(t, resp.LLMUsed)
}

func TestAskNoModelKidHelloReturnsGreetingStory(t *testing.T) {
	svc := newService(nil, reliableRetriever("chunk"), config.LLMConfig{})

	resp, err := svc.Ask(context.Background(), AskRequest{Prompt: "hello", AgeGroup: "kid"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Result)
	assert.False(t, resp.LLMUsed)
	assert.Equal(t, "fallback", resp.Source)
	assert.Contains(t, resp.Result, "story")
}

func TestAskNoModelHindiReturnsDevanagari(t *testing.T) {
	svc := newService(nil, reliableRetriever(), config.LLMConfig{})

	resp, err := svc.Ask(context.Background(), AskRequest{Prompt: "गंगा क्या है", Lang: "hi-IN", AgeGroup: "kid"})
	require.NoError(t, err)
	assert.True(t, hasDevanagari(resp.Result))
}

func TestAskModelUnavailableFallsBack(t *testing.T) {
	llm := &mockLLM{t: t, available: false}
	svc := newService(llm, reliableRetriever("chunk"), config.LLMConfig{})

	resp, err := svc.Ask(context.Background(), AskRequest{Prompt: "question"})
	require.NoError(t, err)
	assert.False(t, resp.LLMUsed)
	assert.Zero(t, llm.completeCalls)
}

func TestAskGenerates(t *testing.T) {
	llm := &mockLLM{t: t, available: true, queue: []ai.GenerationResult{
		{Text: "The Ganga is a long river.", FinishReason: "stop", CompletionTokens: 10},
	}}
	svc := newService(llm, reliableRetriever("the ganga is long"), config.LLMConfig{})

	resp, err := svc.Ask(context.Background(), AskRequest{Prompt: "tell me about the ganga"})
	require.NoError(t, err)
	assert.Equal(t, "The Ganga is a long river.", resp.Result)
	assert.True(t, resp.LLMUsed)
	assert.Equal(t, "llm", resp.Source)
	assert.Equal(t, 1, llm.completeCalls)
	assert.Equal(t, 1, resp.RetrievedCount)
	assert.InDelta(t, 0.9, resp.RAGScore, 1e-9)
}

func TestAskTruncationTriggersExactlyOneContinuation(t *testing.T) {
	llm := &mockLLM{t: t, available: true, queue: []ai.GenerationResult{
		{Text: "The river starts in the", FinishReason: "length", CompletionTokens: 80},
		{Text: "Himalayas and flows east", FinishReason: "length", CompletionTokens: 160},
	}}
	svc := newService(llm, reliableRetriever("chunk"), config.LLMConfig{})

	resp, err := svc.Ask(context.Background(), AskRequest{Prompt: "where does the river start"})
	require.NoError(t, err)
	assert.Equal(t, 2, llm.completeCalls)
	assert.Contains(t, resp.Result, "The river starts in the")
	assert.Contains(t, resp.Result, "Himalayas and flows east")
}

func TestAskTerminalPunctuationSkipsContinuation(t *testing.T) {
	llm := &mockLLM{t: t, available: true, queue: []ai.GenerationResult{
		{Text: "Short and complete!", FinishReason: "stop", CompletionTokens: 5},
	}}
	svc := newService(llm, reliableRetriever("chunk"), config.LLMConfig{})

	_, err := svc.Ask(context.Background(), AskRequest{Prompt: "question"})
	require.NoError(t, err)
	assert.Equal(t, 1, llm.completeCalls)
}

func TestAskEmptyDecodeSubstitutesFallback(t *testing.T) {
	llm := &mockLLM{t: t, available: true, queue: []ai.GenerationResult{
		{Text: "   ", FinishReason: "stop", CompletionTokens: 1},
	}}
	svc := newService(llm, reliableRetriever("chunk"), config.LLMConfig{})

	resp, err := svc.Ask(context.Background(), AskRequest{Prompt: "question"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Result)
	assert.False(t, resp.LLMUsed)
	assert.Equal(t, "fallback", resp.Source)
}

func TestAskGenerationErrorSubstitutesFallback(t *testing.T) {
	llm := &mockLLM{t: t, available: true, completeErr: errors.New("device exploded")}
	svc := newService(llm, reliableRetriever("chunk"), config.LLMConfig{})

	resp, err := svc.Ask(context.Background(), AskRequest{Prompt: "question"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Result)
	assert.False(t, resp.LLMUsed)
}

func TestAskRAGUnavailableRejected(t *testing.T) {
	svc := newService(nil, &fakeRetriever{ready: false}, config.LLMConfig{})

	_, err := svc.Ask(context.Background(), AskRequest{Prompt: "question"})
	assert.ErrorIs(t, err, ErrRAGUnavailable)
}

func TestAskRAGUnavailableAllowedByOverride(t *testing.T) {
	svc := newService(nil, &fakeRetriever{ready: false}, config.LLMConfig{AllowFallbackWithoutRAG: true})

	resp, err := svc.Ask(context.Background(), AskRequest{Prompt: "question"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Result)
	assert.Zero(t, resp.RetrievedCount)
}

func TestAskHindiTranslatesRoundTrip(t *testing.T) {
	llm := &mockLLM{
		t:         t,
		available: true,
		queue: []ai.GenerationResult{
			{Text: "The Ganga is sacred.", FinishReason: "stop", CompletionTokens: 5},
		},
		translations: map[string]string{
			"गंगा क्या है":         "what is the ganga",
			"The Ganga is sacred.": "गंगा पवित्र है।",
		},
	}
	svc := newService(llm, reliableRetriever("the ganga is sacred"), config.LLMConfig{})

	resp, err := svc.Ask(context.Background(), AskRequest{Prompt: "गंगा क्या है", Lang: "hi-IN"})
	require.NoError(t, err)
	assert.Equal(t, "गंगा पवित्र है।", resp.Result)
	assert.Equal(t, 2, llm.translateCalls)
}

func TestStreamForwardsDeltasAndMeta(t *testing.T) {
	llm := &mockLLM{t: t, available: true, queue: []ai.GenerationResult{
		{Text: "Rivers carry life.", FinishReason: "stop", CompletionTokens: 4},
	}}
	svc := newService(llm, reliableRetriever("chunk"), config.LLMConfig{})

	var deltas []string
	resp, err := svc.Stream(context.Background(), AskRequest{Prompt: "question"}, func(chunk string) error {
		deltas = append(deltas, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Rivers carry life.", strings.Join(deltas, ""))
	assert.Equal(t, "Rivers carry life.", resp.Result)
	assert.True(t, resp.LLMUsed)
}

func TestStreamContinuationDeltasMatchResult(t *testing.T) {
	llm := &mockLLM{t: t, available: true, queue: []ai.GenerationResult{
		{Text: "The river starts in the", FinishReason: "length", CompletionTokens: 80},
		{Text: "Himalayas and flows east.", FinishReason: "stop", CompletionTokens: 5},
	}}
	svc := newService(llm, reliableRetriever("chunk"), config.LLMConfig{})

	var deltas []string
	resp, err := svc.Stream(context.Background(), AskRequest{Prompt: "where does the river start"}, func(chunk string) error {
		deltas = append(deltas, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, llm.completeCalls)
	assert.Equal(t, resp.Result, strings.Join(deltas, ""))
}

func TestStreamFallbackEmitsSingleDelta(t *testing.T) {
	svc := newService(nil, reliableRetriever(), config.LLMConfig{})

	var deltas []string
	resp, err := svc.Stream(context.Background(), AskRequest{Prompt: "question"}, func(chunk string) error {
		deltas = append(deltas, chunk)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, resp.Result, deltas[0])
	assert.False(t, resp.LLMUsed)
}

func TestAskPublishesInteraction(t *testing.T) {
	sink := &captureSink{entries: make(chan model.InteractionLog, 1)}
	svc := NewMascotService(config.LLMConfig{}, config.RAGConfig{TopK: 3}, reliableRetriever("chunk"), nil, sink)

	_, err := svc.Ask(context.Background(), AskRequest{
		Prompt:    "hello",
		AgeGroup:  "kid",
		Lang:      "en",
		UserEmail: "kid@example.com",
	})
	require.NoError(t, err)

	entry := <-sink.entries
	assert.Equal(t, "kid@example.com", entry.UserEmail)
	assert.Equal(t, "hello", entry.Prompt)
	assert.Equal(t, "fallback", entry.Source)
	assert.Equal(t, "kid", entry.AgeGroup)
	assert.False(t, entry.LLMUsed)
	assert.NotEmpty(t, entry.Reply)
}
