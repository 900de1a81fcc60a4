package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness plus the span the calendar accepts, so
// clients can show it without a round trip per mutation.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"service": "cyber-calender",
		"range": gin.H{
			"from": RangeStart.Format("2006-01-02"),
			"to":   RangeEnd.AddDate(0, 0, -1).Format("2006-01-02"),
		},
	})
}
