package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-delivery-backend/config"
	"food-delivery-backend/middleware"
	"food-delivery-backend/services"
)

const refreshCookieName = "refreshToken"

// AuthHandler exposes the session lifecycle over HTTP.
type AuthHandler struct {
	auth *services.AuthService
	jwt  *config.JWTConfig
	log  *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, jwt *config.JWTConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, jwt: jwt, log: log}
}

type tokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates an account and signs the caller in.
func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.auth.Register(in, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusCreated, result)
}

// Login authenticates and returns a fresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var in services.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.auth.Login(in, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, result)
}

// RefreshToken rotates the presented refresh token. The token comes from
// the request body or, failing that, the auth cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := h.refreshTokenFrom(c)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token is required"})
		return
	}

	result, err := h.auth.Refresh(token, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, result)
}

// RevokeToken invalidates the presented refresh token.
func (h *AuthHandler) RevokeToken(c *gin.Context) {
	token := h.refreshTokenFrom(c)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token is required"})
		return
	}

	ok, err := h.auth.Revoke(token, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found or already inactive"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe edits the caller's profile.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var in services.UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.auth.UpdateProfile(middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		return cookie
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, h.jwt.RefreshDays*24*3600, "/", "", true, true)
}
