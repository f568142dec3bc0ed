package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/robostack/teamhub/internal/auth"
	"github.com/robostack/teamhub/internal/db"
	"github.com/robostack/teamhub/internal/model"
	"github.com/robostack/teamhub/internal/repository"
)

const tokenTTL = 24 * time.Hour

type AccountService struct {
	tx db.Transactor

	profiles repository.ProfileRepository
}

func NewAccountService(tx db.Transactor) *AccountService {
	return &AccountService{tx: tx}
}

func (a *AccountService) Register(ctx context.Context, email, password string, firstName, lastName *string) (*model.Profile, *Error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to hash password")
	}

	profile := &repository.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         model.RoleStudent,
	}

	err = a.profiles.Create(ctx, profile)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, NewError(ErrorCodeAlreadyExists, "email already registered")
	}
	if err != nil {
		return nil, NewError(ErrorCodeUnspecified, "failed to create profile")
	}

	return toModelProfile(profile), nil
}

// Login verifies credentials and issues a session token carrying the user id
// and role; the team id is resolved per request so it never goes stale.
func (a *AccountService) Login(ctx context.Context, email, password string) (string, *model.Profile, *Error) {
	profile, err := a.profiles.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, NewError(ErrorCodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return "", nil, NewError(ErrorCodeUnspecified, "failed to load profile")
	}

	if err = bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return "", nil, NewError(ErrorCodeUnauthorized, "invalid credentials")
	}

	token, err := auth.GenerateToken(profile.ID, profile.Role, tokenTTL)
	if err != nil {
		return "", nil, NewError(ErrorCodeUnspecified, "failed to issue token")
	}

	return token, toModelProfile(profile), nil
}

// Identify resolves the caller's request-scoped identity from a verified
// token subject.
func (a *AccountService) Identify(ctx context.Context, userID string) (auth.Identity, *Error) {
	profile, err := a.profiles.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.Identity{}, NewError(ErrorCodeUnauthorized, "unknown user")
	}
	if err != nil {
		return auth.Identity{}, NewError(ErrorCodeUnspecified, "failed to load profile")
	}

	id := auth.Identity{
		UserID: profile.ID,
		Role:   profile.Role,
	}
	if profile.TeamID != nil {
		id.TeamID = *profile.TeamID
	}
	return id, nil
}

func (a *AccountService) WithProfileRepo(r repository.ProfileRepository) *AccountService {
	a.profiles = r
	return a
}

func toModelProfile(p *repository.Profile) *model.Profile {
	return &model.Profile{
		ID:        p.ID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		Role:      p.Role,
		TeamID:    p.TeamID,
	}
}
