package models

// User is one member of the fixed friend roster. The roster is seeded once at
// startup and treated as read-only reference data afterwards.
type User struct {
	ID           string  `json:"id" gorm:"primaryKey;size:10"`
	Name         string  `json:"name" gorm:"size:50;not null"`
	Color        string  `json:"color" gorm:"size:30;not null"`
	PasscodeHash string  `json:"-" gorm:"size:255;not null"`
	Events       []Event `json:"-" gorm:"foreignKey:OwnerUserID"`
}

// UserResponse is the public shape of a user. It exists so the passcode hash
// can never leak into an API response.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (u User) Public() UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Color: u.Color}
}
