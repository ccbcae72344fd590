package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"chacha-backend/internal/ai"
	"chacha-backend/internal/config"
	"chacha-backend/internal/model"
	"chacha-backend/internal/persona"
	"chacha-backend/internal/rag"
)

// ErrRAGUnavailable signals that the retrieval layer is not initialized and
// the configuration does not allow answering without it.
var ErrRAGUnavailable = errors.New("rag components not initialized")

// Retriever is the slice of the retrieval engine the mascot needs.
type Retriever interface {
	Ready() bool
	Retrieve(query string, k int) rag.RetrievalResult
}

// LLMClient is the slice of the model client the cascade calls. Nil means no
// model was loaded and every request takes the template path.
type LLMClient interface {
	Model() string
	Available(ctx context.Context) bool
	Complete(ctx context.Context, req ai.GenerationRequest) (ai.GenerationResult, error)
	StreamComplete(ctx context.Context, req ai.GenerationRequest, onChunk func(string) error) (string, error)
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// InteractionSink receives completed exchanges for asynchronous persistence.
type InteractionSink interface {
	Publish(ctx context.Context, entry model.InteractionLog) error
}

// AskRequest is one mascot question.
type AskRequest struct {
	Prompt    string
	Name      string
	AgeGroup  string
	Lang      string
	Speed     string
	Fallback  bool // client-forced template path
	History   []persona.Message
	UserEmail string
}

// AskResponse mirrors the chat endpoint's wire shape.
type AskResponse struct {
	Result           string  `json:"result"`
	RetrievedCount   int     `json:"retrieved_count"`
	RAGScore         float64 `json:"rag_score"`
	Source           string  `json:"source"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
	UsedMaxNewTokens int     `json:"used_max_new_tokens"`
	LatencyMS        int64   `json:"latency_ms"`
	LLMUsed          bool    `json:"llm_used"`
	AudioURL         string  `json:"audio_url,omitempty"`
}

// MascotService runs the generation cascade: retrieval, persona prompt
// assembly, model generation with one truncation continuation, and template
// fallback whenever the model path is unavailable, skipped, or fails.
type MascotService struct {
	llmCfg       config.LLMConfig
	contextChars int
	topK         int

	retriever Retriever
	llm       LLMClient
	sink      InteractionSink

	// modelReady latches the first successful availability probe so later
	// requests skip it. Best effort, never re-latched false.
	modelReady atomic.Bool
}

func NewMascotService(
	llmCfg config.LLMConfig,
	ragCfg config.RAGConfig,
	retriever Retriever,
	llm LLMClient,
	sink InteractionSink,
) *MascotService {
	return &MascotService{
		llmCfg:       llmCfg,
		contextChars: ragCfg.ContextChars,
		topK:         ragCfg.TopK,
		retriever:    retriever,
		llm:          llm,
		sink:         sink,
	}
}

// Ask answers one question. Generation failures degrade to templates; the
// only error returned is the RAG-unavailable guard.
func (s *MascotService) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	started := time.Now()

	retrieval, err := s.retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	settings := DeriveGenerationSettings(s.llmCfg, req.Speed)
	resp := &AskResponse{
		RetrievedCount:   len(retrieval.Chunks),
		RAGScore:         retrieval.Score,
		Source:           "fallback",
		Temperature:      settings.Temperature,
		TopP:             settings.TopP,
		UsedMaxNewTokens: settings.MaxNewTokens,
	}

	if s.useFallback(ctx, req) {
		resp.Result = s.fallbackReply(req, retrieval)
	} else {
		text, ok := s.generate(ctx, req, retrieval, settings, false, nil)
		if ok {
			if persona.IsHindi(req.Lang) {
				text = s.translateReply(ctx, text, req.Lang)
			}
			resp.Result = text
			resp.Source = "llm"
			resp.LLMUsed = true
		} else {
			resp.Result = s.fallbackReply(req, retrieval)
		}
	}

	resp.LatencyMS = time.Since(started).Milliseconds()
	s.record(req, resp)
	return resp, nil
}

// Stream answers one question, invoking onDelta per generated text chunk.
// The Hindi path here instructs the model to reply in Hindi directly instead
// of round-trip translating, so deltas stream in the target language.
func (s *MascotService) Stream(ctx context.Context, req AskRequest, onDelta func(string) error) (*AskResponse, error) {
	started := time.Now()

	retrieval, err := s.retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	settings := DeriveGenerationSettings(s.llmCfg, req.Speed)
	resp := &AskResponse{
		RetrievedCount:   len(retrieval.Chunks),
		RAGScore:         retrieval.Score,
		Source:           "fallback",
		Temperature:      settings.Temperature,
		TopP:             settings.TopP,
		UsedMaxNewTokens: settings.MaxNewTokens,
	}

	if s.useFallback(ctx, req) {
		resp.Result = s.fallbackReply(req, retrieval)
		if err := onDelta(resp.Result); err != nil {
			return nil, err
		}
	} else {
		text, ok := s.generate(ctx, req, retrieval, settings, true, onDelta)
		if ok {
			resp.Result = text
			resp.Source = "llm"
			resp.LLMUsed = true
		} else {
			resp.Result = s.fallbackReply(req, retrieval)
			if err := onDelta(resp.Result); err != nil {
				return nil, err
			}
		}
	}

	resp.LatencyMS = time.Since(started).Milliseconds()
	s.record(req, resp)
	return resp, nil
}

// retrieve runs the retrieval layer, pre-translating Hindi prompts to English
// so the index is queried in the corpus language.
func (s *MascotService) retrieve(ctx context.Context, req AskRequest) (rag.RetrievalResult, error) {
	ready := s.retriever != nil && s.retriever.Ready()
	if !ready {
		if !s.llmCfg.AllowFallbackWithoutRAG {
			return rag.RetrievalResult{}, ErrRAGUnavailable
		}
		return rag.RetrievalResult{}, nil
	}

	query := req.Prompt
	if persona.IsHindi(req.Lang) && s.llm != nil {
		if translated, err := s.llm.Translate(ctx, req.Prompt, "en"); err == nil {
			query = translated
		} else {
			log.Printf("prompt translation failed, retrieving with original text: %v", err)
		}
	}
	return s.retriever.Retrieve(query, s.topK), nil
}

// useFallback decides the template path before any generation attempt: no
// client, forced bypass, or a model server that never answered a probe.
func (s *MascotService) useFallback(ctx context.Context, req AskRequest) bool {
	if req.Fallback || s.llmCfg.ForceFallback || s.llm == nil {
		return true
	}
	if s.modelReady.Load() {
		return false
	}
	if s.llm.Available(ctx) {
		s.modelReady.Store(true)
		return false
	}
	return true
}

// generate runs one model call plus at most one continuation when the first
// answer looks truncated. Returns ok=false on error or empty output so the
// caller substitutes a template.
func (s *MascotService) generate(
	ctx context.Context,
	req AskRequest,
	retrieval rag.RetrievalResult,
	settings GenerationSettings,
	stream bool,
	onDelta func(string) error,
) (string, bool) {
	prompt := persona.BuildPrompt(persona.PromptInput{
		Name:             req.Name,
		AgeGroup:         req.AgeGroup,
		Lang:             req.Lang,
		History:          req.History,
		Context:          strings.Join(retrieval.Chunks, "\n\n"),
		ContextReliable:  retrieval.Reliable,
		ContextCharLimit: s.contextChars,
		UserMessage:      req.Prompt,
		ReplyInLanguage:  stream, // non-stream path translates afterwards instead
	})

	text, truncated, err := s.completeOnce(ctx, prompt, settings, stream, onDelta)
	if err != nil {
		log.Printf("generation failed: %v", err)
		return "", false
	}

	if truncated {
		cont := continuationSettings(settings)
		contPrompt := prompt + text + "\n<|user|>\nContinue your previous answer and finish it.\n<|assistant|>\n"
		contDelta := onDelta
		if stream {
			// The joining space has to reach stream clients too, so the
			// concatenated deltas stay equal to the final text.
			sent := false
			contDelta = func(chunk string) error {
				if !sent {
					sent = true
					if err := onDelta(" "); err != nil {
						return err
					}
				}
				return onDelta(chunk)
			}
		}
		more, _, err := s.completeOnce(ctx, contPrompt, cont, stream, contDelta)
		if err != nil {
			log.Printf("continuation failed: %v", err)
		} else {
			text = joinContinuation(text, more)
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}

func (s *MascotService) completeOnce(
	ctx context.Context,
	prompt string,
	settings GenerationSettings,
	stream bool,
	onDelta func(string) error,
) (text string, truncated bool, err error) {
	callCtx, cancel := context.WithTimeout(ctx, settings.MaxTime)
	defer cancel()

	genReq := ai.GenerationRequest{
		Messages:    []ai.ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   settings.MaxNewTokens,
		Temperature: settings.Temperature,
		TopP:        settings.TopP,
	}

	if stream {
		text, err = s.llm.StreamComplete(callCtx, genReq, onDelta)
		if err != nil {
			return "", false, err
		}
		return text, looksTruncated(text, 0, settings.MaxNewTokens), nil
	}

	result, err := s.llm.Complete(callCtx, genReq)
	if err != nil {
		return "", false, err
	}
	trunc := result.FinishReason == "length" ||
		looksTruncated(result.Text, result.CompletionTokens, settings.MaxNewTokens)
	return result.Text, trunc, nil
}

// looksTruncated flags output cut off mid-thought: the token budget was
// exhausted or the text does not end in terminal punctuation.
func looksTruncated(text string, completionTokens, budget int) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if completionTokens > 0 && budget > 0 && completionTokens >= budget {
		return true
	}
	for _, suffix := range []string{".", "!", "?", "।", "…", "\"", "'"} {
		if strings.HasSuffix(trimmed, suffix) {
			return false
		}
	}
	return true
}

func joinContinuation(first, more string) string {
	if more == "" {
		return first
	}
	// Joined with the same single space the stream path emits as a delta.
	return first + " " + more
}

func (s *MascotService) translateReply(ctx context.Context, text, lang string) string {
	translated, err := s.llm.Translate(ctx, text, lang)
	if err != nil {
		log.Printf("reply translation failed, returning english text: %v", err)
		return text
	}
	return translated
}

func (s *MascotService) fallbackReply(req AskRequest, retrieval rag.RetrievalResult) string {
	var snippet string
	if len(retrieval.Chunks) > 0 {
		snippet = retrieval.Chunks[0]
	}
	return persona.FallbackReply(persona.FallbackInput{
		Prompt:          req.Prompt,
		Name:            req.Name,
		AgeGroup:        req.AgeGroup,
		Lang:            req.Lang,
		HasContext:      len(retrieval.Chunks) > 0,
		ContextReliable: retrieval.Reliable,
		Snippet:         snippet,
	})
}

// record publishes the exchange for async persistence. Detached from the
// request context so a finished request does not cancel the publish.
func (s *MascotService) record(req AskRequest, resp *AskResponse) {
	if s.sink == nil {
		return
	}
	entry := model.InteractionLog{
		UserEmail: req.UserEmail,
		Prompt:    req.Prompt,
		Reply:     resp.Result,
		Source:    resp.Source,
		RAGScore:  resp.RAGScore,
		Lang:      req.Lang,
		AgeGroup:  persona.NormalizeAgeGroup(req.AgeGroup),
		LatencyMS: resp.LatencyMS,
		LLMUsed:   resp.LLMUsed,
	}
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.sink.Publish(pubCtx, entry); err != nil {
			log.Printf("publish interaction log failed: %v", err)
		}
	}()
}

// ModelName reports the configured model for diagnostics.
func (s *MascotService) ModelName() string {
	if s.llm == nil {
		return ""
	}
	return s.llm.Model()
}

// ModelLoaded reports whether a model client exists and has answered a probe.
func (s *MascotService) ModelLoaded(ctx context.Context) bool {
	if s.llm == nil {
		return false
	}
	if s.modelReady.Load() {
		return true
	}
	if s.llm.Available(ctx) {
		s.modelReady.Store(true)
		return true
	}
	return false
}
