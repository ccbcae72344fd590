package http

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"chacha-backend/internal/config"
	"chacha-backend/internal/transport/http/handler"
)

func TestRouterKeepsFrontendPaths(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.GinMode = gin.TestMode

	r := NewRouter(cfg, Handlers{
		Mascot: handler.NewMascotHandler(nil, nil),
		TTS:    handler.NewTTSHandler(nil),
		Health: handler.NewHealthHandler(cfg, nil, nil, nil),
		Auth:   handler.NewAuthHandler(nil),
		Chats:  handler.NewChatsHandler(nil, nil),
	})

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /llama-chat",
		"POST /llama-chat-stream",
		"POST /tts",
		"POST /fast-tts",
		"POST /stt",
		"POST /fast-stt",
		"POST /auth/google-login",
		"POST /auth/google-signup",
		"POST /auth/update_profile",
		"POST /chats/save",
		"POST /chats/delete_all",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}
