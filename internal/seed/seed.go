// Package seed loads the fixed friend roster into the database on startup.
package seed

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/junhot777-lab/cyber-calender/internal/auth"
	"github.com/junhot777-lab/cyber-calender/models"

	"gorm.io/gorm"
)

// Friend describes one roster entry and the environment variable holding
// their passcode.
type Friend struct {
	ID    string
	Name  string
	Color string
	Env   string
}

// Roster is the fixed set of users sharing the calendar.
var Roster = []Friend{
	{ID: "hj", Name: "조현준", Color: "#ff3b3b", Env: "PASS_HJ"},
	{ID: "sk", Name: "김수겸", Color: "#3b6bff", Env: "PASS_SK"},
	{ID: "jh", Name: "장준호", Color: "#ff4fd8", Env: "PASS_JH"},
}

// Users builds the roster as user records, hashing each passcode taken from
// getenv. It fails if any passcode variable is missing.
func Users(getenv func(string) string) ([]models.User, error) {
	users := make([]models.User, 0, len(Roster))
	for _, f := range Roster {
		passcode := getenv(f.Env)
		if passcode == "" {
			return nil, fmt.Errorf("environment variable %s is required", f.Env)
		}
		hash, err := auth.HashPasscode(passcode)
		if err != nil {
			return nil, fmt.Errorf("hash passcode for %s: %w", f.ID, err)
		}
		users = append(users, models.User{
			ID:           f.ID,
			Name:         f.Name,
			Color:        f.Color,
			PasscodeHash: hash,
		})
	}
	return users, nil
}

// Run inserts roster users that do not exist yet. Existing rows are left
// untouched so a live passcode never changes under an operator's feet.
func Run(db *gorm.DB) error {
	users, err := Users(os.Getenv)
	if err != nil {
		return err
	}

	for _, u := range users {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", u.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
		slog.Info("Seeded user", "id", u.ID, "name", u.Name)
	}
	return nil
}
