package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/junhot777-lab/cyber-calender/config"
	"github.com/junhot777-lab/cyber-calender/internal/auth"
	"github.com/junhot777-lab/cyber-calender/models"

	"github.com/gin-gonic/gin"
)

// genericAuthDetail is returned for both unknown users and wrong passcodes,
// so the API never confirms whether a user id exists.
const genericAuthDetail = "invalid user or passcode"

type loginRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Passcode string `json:"passcode" binding:"required"`
}

type loginResponse struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// LoginHandler authenticates a roster user and issues a session token.
func LoginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "user_id and passcode are required"})
		return
	}

	userID := strings.ToLower(strings.TrimSpace(req.UserID))

	var user models.User
	hash := ""
	if err := config.DB.First(&user, "id = ?", userID).Error; err == nil {
		hash = user.PasscodeHash
	}

	if !auth.VerifyOrBurn(req.Passcode, hash) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": genericAuthDetail})
		return
	}

	token, err := auth.CreateToken(user.ID)
	if err != nil {
		slog.Error("Failed to sign session token", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not create session"})
		return
	}

	slog.Info("User logged in", "user_id", user.ID)
	c.JSON(http.StatusOK, loginResponse{Token: token, User: user.Public()})
}
