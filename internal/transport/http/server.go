package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chacha-backend/internal/config"
	"chacha-backend/internal/transport/http/handler"
	"chacha-backend/internal/transport/http/middleware"
)

// Handlers groups everything the router wires up.
type Handlers struct {
	Mascot *handler.MascotHandler
	TTS    *handler.TTSHandler
	Health *handler.HealthHandler
	Auth   *handler.AuthHandler
	Chats  *handler.ChatsHandler
}

// NewRouter builds the gin engine with CORS and all routes. The flat
// top-level chat/tts routes match what the frontend already calls.
func NewRouter(cfg *config.Config, h Handlers) *gin.Engine {
	gin.SetMode(cfg.App.GinMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
	} else {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	optional := middleware.OptionalAuth(cfg.Auth.JWTSecret)
	required := middleware.RequireAuth(cfg.Auth.JWTSecret)

	r.POST("/llama-chat", optional, h.Mascot.Chat)
	r.POST("/llama-chat-stream", optional, h.Mascot.ChatStream)

	r.POST("/tts", h.TTS.TTS)
	r.POST("/fast-tts", h.TTS.FastTTS)
	r.POST("/stt", h.TTS.STTEcho)
	r.POST("/fast-stt", h.TTS.STTEcho)
	r.GET("/stt", h.TTS.STT)
	r.GET("/fast-stt", h.TTS.STT)
	r.GET("/voices", h.TTS.Voices)
	r.GET("/generated_audio/:file", h.TTS.ServeAudio)

	r.GET("/health", h.Health.Health)
	r.GET("/llm-diagnostic", h.Health.LLMDiagnostic)
	r.GET("/tts-diagnostic", h.Health.TTSDiagnostic)

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/google", h.Auth.GoogleLogin)
		auth.GET("/me", required, h.Auth.Me)
		auth.PUT("/profile", required, h.Auth.UpdateProfile)

		// Legacy paths still called by older frontend builds.
		auth.POST("/google-login", h.Auth.GoogleLogin)
		auth.POST("/google-signup", h.Auth.GoogleLogin)
		auth.POST("/update_profile", required, h.Auth.UpdateProfile)
	}

	chats := r.Group("/chats", required)
	{
		chats.POST("", h.Chats.Save)
		chats.GET("", h.Chats.List)
		chats.DELETE("", h.Chats.DeleteAll)
		chats.GET("/admin/all", h.Chats.AdminAll)
		chats.GET("/admin/stats", h.Chats.AdminStats)
		chats.GET("/:id", h.Chats.Get)
		chats.DELETE("/:id", h.Chats.Delete)

		// Legacy paths still called by older frontend builds.
		chats.POST("/save", h.Chats.Save)
		chats.POST("/delete_all", h.Chats.DeleteAll)
	}

	return r
}
