package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the user has no health profile yet.
	ErrNotFound = errors.New("health profile not found")
	// ErrExists means the user already has a health profile.
	ErrExists = errors.New("health profile already exists")
)

type Repository interface {
	Create(ctx context.Context, p *HealthProfile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*HealthProfile, error)
	Update(ctx context.Context, p *HealthProfile) error
}
