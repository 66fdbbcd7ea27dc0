package server

import (
	"net/http"

	"github.com/alexanderramin/riff/internal/apperrors"
	"github.com/alexanderramin/riff/internal/mirror/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc            *auth.Service
	allowAnonymous bool
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(svc *auth.Service, allowAnonymous bool) *AuthHandler {
	return &AuthHandler{svc: svc, allowAnonymous: allowAnonymous}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	result, apiErr := h.svc.Register(c.Request.Context(), req.Email, req.Password)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	result, apiErr := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Anonymous(c *gin.Context) {
	if !h.allowAnonymous {
		writeError(c, apperrors.Forbidden("anonymous sign-in is disabled"))
		return
	}
	result, apiErr := h.svc.SignInAnonymously(c.Request.Context())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, result)
}
