// Package directory holds the read-only user roster, fetched once at client
// startup and never mutated afterwards.
package directory

import (
	"context"
	"fmt"
	"sort"

	"github.com/junhot777-lab/cyber-calender/internal/gateway"
)

// Source is anything that can serve the roster; in practice the gateway.
type Source interface {
	Users(ctx context.Context) ([]gateway.User, error)
}

// Directory is an immutable snapshot of the roster.
type Directory struct {
	users []gateway.User
	byID  map[string]gateway.User
}

// Load fetches the roster once.
func Load(ctx context.Context, src Source) (*Directory, error) {
	users, err := src.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("load user directory: %w", err)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	byID := make(map[string]gateway.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &Directory{users: users, byID: byID}, nil
}

// ByID looks a user up by id.
func (d *Directory) ByID(id string) (gateway.User, bool) {
	u, ok := d.byID[id]
	return u, ok
}

// Has reports whether the id belongs to a known user.
func (d *Directory) Has(id string) bool {
	_, ok := d.byID[id]
	return ok
}

// All returns the roster in id order. Callers must not modify it.
func (d *Directory) All() []gateway.User {
	return d.users
}
