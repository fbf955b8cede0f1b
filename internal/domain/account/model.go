package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthtrack/healthtrack/internal/platform/auth"
)

// User maps to the app_user table. The password hash never leaves the server.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"fullName"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Identity returns the sanitized view bound to authenticated requests.
func (u *User) Identity() *auth.Identity {
	return &auth.Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
	}
}
