package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/event-invoicer/config"
	"github.com/yourusername/event-invoicer/middleware"
	"github.com/yourusername/event-invoicer/utils"
)

type AuthHandler struct {
	Cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

// LoginRequest body
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login opens a session for the invoice browser. There is no lockout.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !utils.CheckPassword(h.Cfg.BrowserPasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password", "code": "InvalidPassword"})
		return
	}

	accessToken, err := middleware.GenerateToken(middleware.RoleBrowser, h.Cfg.JWTSecret, h.Cfg.JWTTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"expires_in":   int(h.Cfg.JWTTTL.Seconds()),
	})
}
