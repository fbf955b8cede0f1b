package files

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound means no file matches the id for that user. A file owned by
// someone else is indistinguishable from a missing one.
var ErrNotFound = errors.New("file not found")

type Repository interface {
	Create(ctx context.Context, f *MedicalFile) error
	GetByID(ctx context.Context, userID, fileID uuid.UUID) (*MedicalFile, error)
	// ListByUser returns one page of the user's files, newest first, plus
	// the total count.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*MedicalFile, int, error)
	Delete(ctx context.Context, userID, fileID uuid.UUID) error
}
