package handler

import (
	"github.com/gin-gonic/gin"

	"chacha-backend/internal/app"
	"chacha-backend/internal/config"
	"chacha-backend/internal/rag"
	"chacha-backend/internal/transport/http/response"
	"chacha-backend/internal/tts"
)

// HealthHandler serves the status introspection endpoints.
type HealthHandler struct {
	cfg    *config.Config
	mascot *app.MascotService
	rag    *rag.Engine
	tts    *tts.Engine
}

func NewHealthHandler(cfg *config.Config, mascot *app.MascotService, ragEngine *rag.Engine, ttsEngine *tts.Engine) *HealthHandler {
	return &HealthHandler{cfg: cfg, mascot: mascot, rag: ragEngine, tts: ttsEngine}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	response.OK(c, gin.H{
		"status":    "ok",
		"app":       h.cfg.App.Name,
		"env":       h.cfg.App.Env,
		"rag_ready": h.rag.Ready(),
	})
}

// LLMDiagnostic handles GET /llm-diagnostic.
func (h *HealthHandler) LLMDiagnostic(c *gin.Context) {
	response.OK(c, gin.H{
		"model":                      h.mascot.ModelName(),
		"model_loaded":               h.mascot.ModelLoaded(c.Request.Context()),
		"device":                     h.cfg.LLM.Device,
		"speed_preset":               h.cfg.LLM.SpeedPreset,
		"force_fallback":             h.cfg.LLM.ForceFallback,
		"skip_load":                  h.cfg.LLM.SkipLoad,
		"allow_fallback_without_rag": h.cfg.LLM.AllowFallbackWithoutRAG,
		"rag":                        h.rag.Status(),
	})
}

// TTSDiagnostic handles GET /tts-diagnostic.
func (h *HealthHandler) TTSDiagnostic(c *gin.Context) {
	if h.tts == nil {
		response.OK(c, gin.H{"enabled": false})
		return
	}
	response.OK(c, h.tts.Diagnostic())
}
