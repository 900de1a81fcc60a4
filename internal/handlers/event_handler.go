package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/junhot777-lab/cyber-calender/config"
	"github.com/junhot777-lab/cyber-calender/internal/auth"
	"github.com/junhot777-lab/cyber-calender/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// createEventRequest carries everything a mutating call needs, including the
// per-action passcode. Any owner field a client might send is ignored: the
// owner is always the session user.
type createEventRequest struct {
	Title    string    `json:"title"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	AllDay   bool      `json:"all_day"`
	Note     string    `json:"note"`
	Passcode string    `json:"passcode"`
}

type updateEventRequest struct {
	Title    string `json:"title"`
	Note     string `json:"note"`
	Passcode string `json:"passcode"`
}

// GetEvents returns every event overlapping the half-open window [start, end).
// Both bounds are optional and are clamped to the allowed calendar range;
// reads are public.
func GetEvents(c *gin.Context) {
	w, detail := parseWindow(c.Query("start"), c.Query("end"))
	if detail != "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
		return
	}
	query := w.scope(config.DB.Preload("Owner").Model(&models.Event{}))

	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		slog.Error("Failed to fetch events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not fetch events"})
		return
	}

	out := make([]models.EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Response())
	}
	c.JSON(http.StatusOK, out)
}

// CreateEvent creates an event owned by the session user after re-checking
// their passcode.
func CreateEvent(c *gin.Context) {
	user := currentUser(c)

	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	if !auth.VerifyPasscode(req.Passcode, user.PasscodeHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": genericAuthDetail})
		return
	}
	if detail := validateEventInput(req.Title, req.Note, req.StartAt, req.EndAt); detail != "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
		return
	}

	event := models.Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		AllDay:      req.AllDay,
		Note:        strings.TrimSpace(req.Note),
		OwnerUserID: user.ID,
		Owner:       user,
	}

	if err := config.DB.Omit("Owner").Create(&event).Error; err != nil {
		slog.Error("Failed to create event", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not create event"})
		return
	}

	GlobalHub.NotifyEventsChanged()
	c.JSON(http.StatusCreated, event.Response())
}

// UpdateEvent changes the title and note of an event the session user owns.
func UpdateEvent(c *gin.Context) {
	user := currentUser(c)
	eventID := c.Param("id")

	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	event, ok := findEvent(c, eventID)
	if !ok {
		return
	}
	if status, detail := mutationGate(&event, user, req.Passcode); status != 0 {
		c.JSON(status, gin.H{"detail": detail})
		return
	}

	if detail := validateEventInput(req.Title, req.Note, event.StartAt, event.EndAt); detail != "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
		return
	}

	event.Title = strings.TrimSpace(req.Title)
	event.Note = strings.TrimSpace(req.Note)
	if err := config.DB.Omit("Owner").Save(&event).Error; err != nil {
		slog.Error("Failed to update event", "error", err, "event_id", eventID)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not update event"})
		return
	}

	GlobalHub.NotifyEventsChanged()
	c.JSON(http.StatusOK, event.Response())
}

// DeleteEvent removes an event the session user owns. The passcode rides in a
// query parameter because DELETE carries no body.
func DeleteEvent(c *gin.Context) {
	user := currentUser(c)
	eventID := c.Param("id")
	passcode := c.Query("passcode")

	event, ok := findEvent(c, eventID)
	if !ok {
		return
	}
	if status, detail := mutationGate(&event, user, passcode); status != 0 {
		c.JSON(status, gin.H{"detail": detail})
		return
	}
	if !inCalendarRange(event.StartAt, event.EndAt) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": rangeDetail})
		return
	}

	if err := config.DB.Delete(&event).Error; err != nil {
		slog.Error("Failed to delete event", "error", err, "event_id", eventID)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not delete event"})
		return
	}

	GlobalHub.NotifyEventsChanged()
	c.JSON(http.StatusOK, gin.H{"deleted": 1})
}

// findEvent loads an event with its owner, answering 404 itself when missing.
func findEvent(c *gin.Context, id string) (models.Event, bool) {
	var event models.Event
	err := config.DB.Preload("Owner").First(&event, "id = ?", id).Error
	if err == nil {
		return event, true
	}
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"detail": "event not found"})
	} else {
		slog.Error("Failed to load event", "error", err, "event_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not load event"})
	}
	return models.Event{}, false
}

// currentUser returns the user stashed by the auth middleware.
func currentUser(c *gin.Context) models.User {
	user, _ := c.MustGet("current_user").(models.User)
	return user
}
