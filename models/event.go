package models

import "time"

// Event is a calendar entry owned by exactly one user. The owner is assigned
// at creation from the session and is never reassigned.
type Event struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	StartAt     time.Time `json:"start_at" gorm:"not null"`
	EndAt       time.Time `json:"end_at" gorm:"not null"`
	AllDay      bool      `json:"all_day" gorm:"not null;default:false"`
	Note        string    `json:"note" gorm:"size:500"`
	OwnerUserID string    `json:"owner_user_id" gorm:"size:10;not null;index"`
	Owner       User      `json:"-" gorm:"foreignKey:OwnerUserID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventResponse is the event shape sent to clients, with the owner's display
// name and color joined in for rendering.
type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	AllDay      bool      `json:"all_day"`
	Note        string    `json:"note,omitempty"`
	OwnerUserID string    `json:"owner_user_id"`
	OwnerName   string    `json:"owner_name"`
	Color       string    `json:"color,omitempty"`
}

func (e Event) Response() EventResponse {
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
		AllDay:      e.AllDay,
		Note:        e.Note,
		OwnerUserID: e.OwnerUserID,
		OwnerName:   e.Owner.Name,
		Color:       e.Owner.Color,
	}
}
