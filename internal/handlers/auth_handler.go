package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/services"
)

// AuthHandler serves registration, login and token introspection.
type AuthHandler struct {
	service services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// TokenResponse is returned by every sign-in endpoint.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

// VerifyResponse is returned by GET /api/auth/verify.
type VerifyResponse struct {
	Valid bool         `json:"valid"`
	User  *models.User `json:"user"`
}

func newTokenResponse(session *services.Session) TokenResponse {
	return TokenResponse{
		AccessToken: session.AccessToken,
		TokenType:   "bearer",
		User:        session.User,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bindJSON(c, &in) {
		return
	}

	session, err := h.service.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to register user")
		return
	}
	c.JSON(http.StatusCreated, newTokenResponse(session))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var in services.LoginInput
	if !bindJSON(c, &in) {
		return
	}

	session, err := h.service.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Failed to log in")
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(session))
}

// Google handles POST /api/auth/google.
func (h *AuthHandler) Google(c *gin.Context) {
	var in services.GoogleLoginInput
	if !bindJSON(c, &in) {
		return
	}

	session, err := h.service.GoogleLogin(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Google authentication failed")
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(session))
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, err := h.service.CurrentUser(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Verify handles GET /api/auth/verify. Reaching it at all means the
// token passed the auth middleware.
func (h *AuthHandler) Verify(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, err := h.service.CurrentUser(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, VerifyResponse{Valid: true, User: user})
}
