package handlers

import (
	"net/http"
	"time"

	"devsync/internal/app"
	"devsync/internal/common"
	"devsync/internal/domain/auth"
	"devsync/internal/domain/user"
	"devsync/internal/http/middleware"
	"devsync/internal/http/response"
)

type AuthHandler struct {
	auth    *app.AuthService
	limiter middleware.Limiter
}

func NewAuthHandler(authService *app.AuthService, limiter middleware.Limiter) *AuthHandler {
	return &AuthHandler{auth: authService, limiter: limiter}
}

type authResponse struct {
	User   *user.User      `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.allow(r, "register", 5, time.Minute) {
		response.Error(w, common.NewError(common.CodeRateLimited, "registration rate limit exceeded", nil))
		return
	}
	var req app.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	account, tokens, err := h.auth.Register(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, authResponse{User: account, Tokens: tokens})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.allow(r, "login", 10, time.Minute) {
		response.Error(w, common.NewError(common.CodeRateLimited, "login rate limit exceeded", nil))
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	account, tokens, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, authResponse{User: account, Tokens: tokens})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.RefreshToken == "" {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"refresh_token": "refresh_token is required"}))
		return
	}
	tokens, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) allow(r *http.Request, action string, limit int, window time.Duration) bool {
	if h.limiter == nil {
		return true
	}
	return h.limiter.Allow(action+":"+middleware.ClientIP(r), limit, window)
}
