package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chacha-backend/internal/transport/http/response"
	"chacha-backend/internal/tts"
)

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Lang  string `json:"lang"`
}

// TTSHandler serves speech synthesis, voice listing, and generated audio.
type TTSHandler struct {
	engine *tts.Engine
}

func NewTTSHandler(engine *tts.Engine) *TTSHandler {
	return &TTSHandler{engine: engine}
}

// TTS handles POST /tts, answering with the WAV bytes directly.
func (h *TTSHandler) TTS(c *gin.Context) {
	fileName, ok := h.synthesize(c)
	if !ok {
		return
	}
	path, err := h.engine.AudioPath(fileName)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "generated audio missing")
		return
	}
	c.Header("Content-Type", "audio/wav")
	c.File(path)
}

// FastTTS handles POST /fast-tts, answering with a URL the client fetches.
func (h *TTSHandler) FastTTS(c *gin.Context) {
	fileName, ok := h.synthesize(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{"audio_url": "/generated_audio/" + fileName})
}

func (h *TTSHandler) synthesize(c *gin.Context) (string, bool) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid JSON body")
		return "", false
	}
	if strings.TrimSpace(req.Text) == "" {
		response.Error(c, http.StatusBadRequest, "text is required")
		return "", false
	}
	if h.engine == nil || !h.engine.Enabled() {
		response.Error(c, http.StatusServiceUnavailable, "tts engine disabled")
		return "", false
	}

	voice := req.Voice
	if voice == "" && req.Lang != "" {
		// A bare language hint picks the locale-preferred voice.
		voice = req.Lang
	}

	synthCtx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()
	fileName, err := h.engine.Synthesize(synthCtx, req.Text, voice)
	if err != nil {
		if errors.Is(err, tts.ErrNoVoices) {
			response.Error(c, http.StatusServiceUnavailable, "no tts voices installed")
			return "", false
		}
		log.Printf("tts synthesis failed: %v", err)
		response.Error(c, http.StatusInternalServerError, "tts synthesis failed")
		return "", false
	}
	return fileName, true
}

// Voices handles GET /voices.
func (h *TTSHandler) Voices(c *gin.Context) {
	if h.engine == nil {
		response.OK(c, gin.H{"voices": []any{}})
		return
	}
	voices := h.engine.Voices()
	if voices == nil {
		voices = []tts.Voice{}
	}
	response.OK(c, gin.H{"voices": voices})
}

// ServeAudio handles GET /generated_audio/:file.
func (h *TTSHandler) ServeAudio(c *gin.Context) {
	if h.engine == nil {
		response.Error(c, http.StatusNotFound, "audio not found")
		return
	}
	path, err := h.engine.AudioPath(c.Param("file"))
	if err != nil {
		response.Error(c, http.StatusNotFound, "audio not found")
		return
	}
	c.Header("Content-Type", "audio/wav")
	c.File(path)
}

// STT handles speech-to-text requests. Transcription has no local backend;
// the endpoint acknowledges the upload so clients keep a uniform audio API.
func (h *TTSHandler) STT(c *gin.Context) {
	response.OK(c, gin.H{
		"text":  "",
		"error": "speech-to-text backend not configured",
	})
}

type sttRequest struct {
	Text string `json:"text"`
}

// STTEcho handles POST /stt. Recognition runs in the browser; the server
// echoes the recognized text back so clients keep a uniform audio API.
func (h *TTSHandler) STTEcho(c *gin.Context) {
	var req sttRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		response.Error(c, http.StatusBadRequest, "text is required")
		return
	}
	response.OK(c, gin.H{"result": req.Text})
}
