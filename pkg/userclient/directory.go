// Package userclient provides access to the user-owning service's directory
// of users, used by other services to attribute records to real people.
package userclient

import (
	"context"
	"errors"
)

// UserRef is the subset of user data other services care about.
type UserRef struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// ErrNotFound is returned when the directory has no user for the given key.
var ErrNotFound = errors.New("user not found")

// Directory looks up users in the user service.
type Directory interface {
	// GetByID returns the user with the given ID, or ErrNotFound.
	GetByID(ctx context.Context, id uint) (*UserRef, error)
	// GetByUsername returns the user with the given username, or ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*UserRef, error)
	// GetByIDs returns the users for the given IDs keyed by ID. IDs with no
	// matching user are omitted from the result; only transport or service
	// failures produce an error.
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*UserRef, error)
}
