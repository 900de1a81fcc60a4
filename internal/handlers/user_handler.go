package handlers

import (
	"net/http"

	"github.com/junhot777-lab/cyber-calender/config"
	"github.com/junhot777-lab/cyber-calender/models"

	"github.com/gin-gonic/gin"
)

// ListUsersHandler returns the full roster: id, display name and color only.
// The list is read-only reference data used by clients for labeling.
func ListUsersHandler(c *gin.Context) {
	var users []models.User
	if err := config.DB.Order("id asc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not fetch users"})
		return
	}

	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, out)
}
