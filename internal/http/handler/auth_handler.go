package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meminc/powsysmon/internal/apierr"
	"github.com/meminc/powsysmon/internal/http/middleware"
	"github.com/meminc/powsysmon/internal/service"
)

// AuthHandler serves the login/logout endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// Login authenticates by email/password and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, bindError(err))
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWith(c, err)
		return
	}
	respond(c, http.StatusOK, result, "")
}

// Logout revokes the presented token and drops the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		abortWith(c, apierr.Authentication("Authentication required"))
		return
	}
	raw, ok := middleware.RawTokenFromContext(c.Request.Context())
	if !ok {
		abortWith(c, apierr.Authentication("Authentication required"))
		return
	}

	if err := h.Auth.Logout(c.Request.Context(), identity, raw, middleware.SessionID(c)); err != nil {
		abortWith(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "Logout successful")
}

// Me echoes the authenticated identity.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		abortWith(c, apierr.Authentication("Authentication required"))
		return
	}
	respond(c, http.StatusOK, gin.H{
		"user_id": identity.UserID,
		"role":    identity.Role,
	}, "")
}
