package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthtrack/healthtrack/internal/platform/auth"
)

var (
	// ErrBadCredentials means the identity exists but the password is wrong.
	ErrBadCredentials = errors.New("invalid credentials")
	// ErrInvalid marks rejected caller input. Handlers map it to 400;
	// anything else bubbles up as an internal error.
	ErrInvalid = errors.New("invalid input")
)

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type LoginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Service struct {
	repo   Repository
	issuer *auth.Issuer
}

func NewService(repo Repository, issuer *auth.Issuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// Register creates a new user. Usernames are stored lowercased so lookups
// are case-insensitive; username and email uniqueness is enforced by the
// store's unique indexes.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Username == "" || in.Email == "" || in.FullName == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email, fullName and password are required", ErrInvalid)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username:     strings.ToLower(in.Username),
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login resolves the identity by username or email, checks the password and
// issues an access token. ErrNotFound and ErrBadCredentials stay distinct so
// the handler can reproduce the 404/401 split of the API contract.
func (s *Service) Login(ctx context.Context, in LoginInput) (*User, string, error) {
	if (in.Username == "" && in.Email == "") || in.Password == "" {
		return nil, "", fmt.Errorf("%w: username/email and password are required", ErrInvalid)
	}

	var (
		u   *User
		err error
	)
	if in.Username != "" {
		u, err = s.repo.GetByUsername(ctx, strings.ToLower(in.Username))
	} else {
		u, err = s.repo.GetByEmail(ctx, in.Email)
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, "", ErrBadCredentials
	}

	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return u, token, nil
}

// Resolve implements auth.IdentityResolver: a verified token subject is only
// as good as the account still backing it.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID) (*auth.Identity, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Identity(), nil
}
