package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/junhot777-lab/cyber-calender/config"
	"github.com/junhot777-lab/cyber-calender/internal/auth"
	"github.com/junhot777-lab/cyber-calender/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const userCacheTTL = 10 * time.Minute

// AuthMiddleware validates the bearer token and stashes the authenticated
// user under "current_user". Mutating handlers re-check the passcode on top
// of this; the session token alone never authorizes a mutation.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handleAuthError(c, "authorization token not provided")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			handleAuthError(c, "invalid authorization header format")
			return
		}

		userID, err := auth.ParseToken(parts[1])
		if err != nil {
			handleAuthError(c, "invalid or expired token")
			return
		}

		cacheKey := fmt.Sprintf("user:%s:data", userID)
		if config.RDB != nil {
			cached, err := config.RDB.Get(config.Ctx, cacheKey).Result()
			if err == nil {
				var entry cacheEntry
				if json.Unmarshal([]byte(cached), &entry) == nil && entry.PasscodeHash != "" {
					c.Set("current_user", entry.User())
					c.Next()
					return
				}
				slog.Warn("Failed to unmarshal cached user", "user_id", userID)
			} else if err != redis.Nil {
				slog.Error("Redis GET failed", "error", err, "user_id", userID)
			}
		}

		var user models.User
		if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
			handleAuthError(c, "user from token not found")
			return
		}

		if config.RDB != nil {
			// The hash must ride along for per-action passcode checks, so the
			// cache value serializes the full record, not the public shape.
			payload, err := json.Marshal(cacheUser(user))
			if err == nil {
				if err := config.RDB.Set(config.Ctx, cacheKey, payload, userCacheTTL).Err(); err != nil {
					slog.Error("Failed to cache user", "error", err, "user_id", userID)
				}
			}
		}

		c.Set("current_user", user)
		c.Next()
	}
}

// cacheUser mirrors models.User with the hash included for serialization.
type cacheEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	PasscodeHash string `json:"passcode_hash"`
}

func cacheUser(u models.User) cacheEntry {
	return cacheEntry{ID: u.ID, Name: u.Name, Color: u.Color, PasscodeHash: u.PasscodeHash}
}

func (e cacheEntry) User() models.User {
	return models.User{ID: e.ID, Name: e.Name, Color: e.Color, PasscodeHash: e.PasscodeHash}
}

func handleAuthError(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"detail": message})
	c.Abort()
}
