package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chacha-backend/internal/app"
	"chacha-backend/internal/persona"
	"chacha-backend/internal/transport/http/middleware"
	"chacha-backend/internal/transport/http/response"
	"chacha-backend/internal/tts"
)

// chatRequest is the wire shape of both chat endpoints.
type chatRequest struct {
	Prompt   string            `json:"prompt"`
	Lang     string            `json:"lang"`
	AgeGroup string            `json:"ageGroup"`
	Name     string            `json:"name"`
	Speed    string            `json:"speed"`
	Fallback bool              `json:"fallback"`
	TTS      bool              `json:"tts"`
	Voice    string            `json:"voice"`
	History  []persona.Message `json:"history"`
}

// MascotHandler serves the chat endpoints.
type MascotHandler struct {
	mascot *app.MascotService
	tts    *tts.Engine
}

func NewMascotHandler(mascot *app.MascotService, engine *tts.Engine) *MascotHandler {
	return &MascotHandler{mascot: mascot, tts: engine}
}

// Chat handles POST /llama-chat.
func (h *MascotHandler) Chat(c *gin.Context) {
	req, ok := h.bindChatRequest(c)
	if !ok {
		return
	}

	resp, err := h.mascot.Ask(c.Request.Context(), h.toAskRequest(c, req))
	if err != nil {
		if errors.Is(err, app.ErrRAGUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, "RAG components not initialized")
			return
		}
		log.Printf("chat request failed: %v", err)
		response.Error(c, http.StatusInternalServerError, "internal error")
		return
	}

	if req.TTS && h.tts != nil && h.tts.Enabled() {
		ttsCtx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		fileName, synthErr := h.tts.Synthesize(ttsCtx, resp.Result, req.Voice)
		cancel()
		if synthErr != nil {
			log.Printf("chat tts synthesis failed: %v", synthErr)
		} else {
			resp.AudioURL = "/generated_audio/" + fileName
		}
	}

	response.OK(c, resp)
}

// ChatStream handles POST /llama-chat-stream as newline-delimited JSON:
// one {"delta": ...} object per chunk, then a final object with done=true
// and the response metadata.
func (h *MascotHandler) ChatStream(c *gin.Context) {
	req, ok := h.bindChatRequest(c)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	flusher, _ := c.Writer.(http.Flusher)
	writeLine := func(obj any) error {
		payload, err := json.Marshal(obj)
		if err != nil {
			return err
		}
		if _, err := c.Writer.Write(append(payload, '\n')); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	wroteAny := false
	onDelta := func(chunk string) error {
		wroteAny = true
		return writeLine(gin.H{"delta": chunk})
	}

	resp, err := h.mascot.Stream(c.Request.Context(), h.toAskRequest(c, req), onDelta)
	if err != nil {
		if wroteAny {
			// Mid-stream failures can only be reported in-band.
			_ = writeLine(gin.H{"done": true, "error": "stream aborted"})
			return
		}
		if errors.Is(err, app.ErrRAGUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, "RAG components not initialized")
			return
		}
		log.Printf("chat stream failed: %v", err)
		response.Error(c, http.StatusInternalServerError, "internal error")
		return
	}

	_ = writeLine(gin.H{
		"done":                true,
		"result":              resp.Result,
		"retrieved_count":     resp.RetrievedCount,
		"rag_score":           resp.RAGScore,
		"source":              resp.Source,
		"temperature":         resp.Temperature,
		"top_p":               resp.TopP,
		"used_max_new_tokens": resp.UsedMaxNewTokens,
		"latency_ms":          resp.LatencyMS,
		"llm_used":            resp.LLMUsed,
	})
}

func (h *MascotHandler) bindChatRequest(c *gin.Context) (chatRequest, bool) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}
	if strings.TrimSpace(req.Prompt) == "" {
		response.Error(c, http.StatusBadRequest, "prompt is required")
		return req, false
	}
	return req, true
}

func (h *MascotHandler) toAskRequest(c *gin.Context, req chatRequest) app.AskRequest {
	name := req.Name
	if name == "" {
		name = middleware.Name(c)
	}
	return app.AskRequest{
		Prompt:    req.Prompt,
		Name:      name,
		AgeGroup:  req.AgeGroup,
		Lang:      req.Lang,
		Speed:     req.Speed,
		Fallback:  req.Fallback,
		History:   req.History,
		UserEmail: middleware.Email(c),
	}
}
