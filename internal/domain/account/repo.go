package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrExists means the username or email is already taken.
	ErrExists = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
