package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chacha-backend/internal/app"
	"chacha-backend/internal/transport/http/middleware"
	"chacha-backend/internal/transport/http/response"
)

// AuthHandler serves registration, login, and profile endpoints.
type AuthHandler struct {
	auth *app.AuthService
}

func NewAuthHandler(auth *app.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		AdminCode string `json:"admin_code"`
		Age       *int   `json:"age"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.auth.Register(req.Name, req.Email, req.Password, req.AdminCode, req.Age)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmailTaken):
			response.Error(c, http.StatusConflict, "email already registered")
		case errors.Is(err, app.ErrInvalidCredentials):
			response.Error(c, http.StatusBadRequest, "email and password are required")
		default:
			response.Error(c, http.StatusInternalServerError, "registration failed")
		}
		return
	}
	response.OK(c, result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		response.Error(c, http.StatusInternalServerError, "login failed")
		return
	}
	response.OK(c, result)
}

// GoogleLogin handles POST /auth/google.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req struct {
		Credential string `json:"credential"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Credential == "" {
		response.Error(c, http.StatusBadRequest, "credential is required")
		return
	}

	result, err := h.auth.GoogleLogin(req.Credential)
	if err != nil {
		if errors.Is(err, app.ErrBadGoogleToken) {
			response.Error(c, http.StatusBadRequest, "invalid google credential")
			return
		}
		response.Error(c, http.StatusInternalServerError, "google login failed")
		return
	}
	response.OK(c, result)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUserByEmail(middleware.Email(c))
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "lookup failed")
		return
	}
	response.OK(c, user)
}

// UpdateProfile handles PUT /auth/profile, re-issuing the token so its
// claims reflect the update.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Name *string `json:"name"`
		Age  *int    `json:"age"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.auth.UpdateProfile(middleware.Email(c), req.Name, req.Age)
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "update failed")
		return
	}
	response.OK(c, result)
}
