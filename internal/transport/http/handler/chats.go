package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chacha-backend/internal/app"
	"chacha-backend/internal/model"
	"chacha-backend/internal/transport/http/middleware"
	"chacha-backend/internal/transport/http/response"
)

// ChatsHandler serves the chat persistence endpoints. All routes require
// auth; the admin routes additionally check the stored admin flag.
type ChatsHandler struct {
	chats *app.ChatService
	auth  *app.AuthService
}

func NewChatsHandler(chats *app.ChatService, auth *app.AuthService) *ChatsHandler {
	return &ChatsHandler{chats: chats, auth: auth}
}

// chatPayload accepts the frontend's chat document. The id arrives as a
// number or string depending on client version.
type chatPayload struct {
	ID       json.Number      `json:"id"`
	Title    string           `json:"title"`
	Messages []map[string]any `json:"messages"`
}

// Save handles POST /chats.
func (h *ChatsHandler) Save(c *gin.Context) {
	var req chatPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	chatID := req.ID.String()
	if chatID == "" {
		response.Error(c, http.StatusBadRequest, "chat id is required")
		return
	}

	chat := &model.Chat{
		ChatID: chatID,
		Title:  req.Title,
	}
	chat.SetMessageList(req.Messages)

	if err := h.chats.Save(c.Request.Context(), middleware.Email(c), chat); err != nil {
		if errors.Is(err, app.ErrWelcomeChatConflict) {
			response.Error(c, http.StatusConflict, "welcome chat already exists")
			return
		}
		response.Error(c, http.StatusInternalServerError, "save chat failed")
		return
	}
	response.OK(c, gin.H{"saved": true, "id": chatID})
}

// List handles GET /chats.
func (h *ChatsHandler) List(c *gin.Context) {
	chats, err := h.chats.List(c.Request.Context(), middleware.Email(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list chats failed")
		return
	}
	response.OK(c, gin.H{"chats": chatDocs(chats)})
}

// Get handles GET /chats/:id.
func (h *ChatsHandler) Get(c *gin.Context) {
	chat, err := h.chats.Get(middleware.Email(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, app.ErrChatNotFound) {
			response.Error(c, http.StatusNotFound, "chat not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "get chat failed")
		return
	}
	response.OK(c, chatDoc(*chat))
}

// Delete handles DELETE /chats/:id.
func (h *ChatsHandler) Delete(c *gin.Context) {
	err := h.chats.Delete(c.Request.Context(), middleware.Email(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, app.ErrChatNotFound) {
			response.Error(c, http.StatusNotFound, "chat not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "delete chat failed")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// DeleteAll handles DELETE /chats.
func (h *ChatsHandler) DeleteAll(c *gin.Context) {
	removed, err := h.chats.DeleteAll(c.Request.Context(), middleware.Email(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "delete chats failed")
		return
	}
	response.OK(c, gin.H{"deleted": removed})
}

// AdminAll handles GET /chats/admin/all.
func (h *ChatsHandler) AdminAll(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	chats, err := h.chats.AllChats()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list chats failed")
		return
	}
	response.OK(c, gin.H{"chats": chatDocs(chats)})
}

// AdminStats handles GET /chats/admin/stats.
func (h *ChatsHandler) AdminStats(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	stats, err := h.chats.Stats()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "stats failed")
		return
	}
	response.OK(c, stats)
}

func (h *ChatsHandler) requireAdmin(c *gin.Context) bool {
	user, err := h.auth.GetUserByEmail(middleware.Email(c))
	if err != nil || !user.IsAdmin {
		response.Error(c, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}

func chatDocs(chats []model.Chat) []gin.H {
	docs := make([]gin.H, 0, len(chats))
	for _, chat := range chats {
		docs = append(docs, chatDoc(chat))
	}
	return docs
}

func chatDoc(chat model.Chat) gin.H {
	messages := chat.MessageList()
	if messages == nil {
		messages = []map[string]any{}
	}
	return gin.H{
		"id":         chat.ChatID,
		"user_email": chat.UserEmail,
		"title":      chat.Title,
		"messages":   messages,
		"created":    chat.CreatedAt,
		"updated":    chat.UpdatedAt,
	}
}
