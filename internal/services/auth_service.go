package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/writify/writify-backend/internal/domain/entities"
	domainerrors "github.com/writify/writify-backend/internal/domain/errors"
	"github.com/writify/writify-backend/internal/domain/ports"
	"github.com/writify/writify-backend/internal/domain/repositories"
	"github.com/writify/writify-backend/internal/domain/valueobjects"
)

// AuthService turns verified OAuth identities into users.
type AuthService struct {
	base
	users  repositories.UserRepository
	domain string
}

// NewAuthService creates an AuthService that admits emails of universityDomain only.
func NewAuthService(users repositories.UserRepository, universityDomain string, logger ports.Logger, opts ...Option) *AuthService {
	return &AuthService{
		base:   newBase(logger, opts),
		users:  users,
		domain: universityDomain,
	}
}

// Login finds or creates the user behind identity. New users start as students.
func (s *AuthService) Login(ctx context.Context, identity *ports.Identity) (*entities.User, error) {
	email, err := valueobjects.NewEmail(identity.Email)
	if err != nil || !email.InDomain(s.domain) {
		s.logger.Warn("login rejected: email outside university domain", "email", identity.Email)
		return nil, domainerrors.ErrInvalidEmailDomain
	}
	if !identity.EmailVerified {
		s.logger.Warn("login rejected: email not verified", "email", identity.Email)
		return nil, domainerrors.ErrInvalidEmailDomain.WithMessage("email not verified")
	}

	now := s.now()
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = strings.Split(email.String(), "@")[0]
	}

	user, inserted, err := s.users.UpsertByGoogleID(ctx, &entities.User{
		ID:             uuid.NewString(),
		GoogleID:       identity.Subject,
		Email:          email,
		Name:           name,
		ProfilePicture: identity.Picture,
		Role:           entities.RoleStudent,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	if inserted {
		s.logger.Info("user signed up", "user_id", user.ID, "email", email.String())
	} else {
		s.logger.Info("user logged in", "user_id", user.ID)
	}
	return user, nil
}

// CurrentUser loads the user a session points at.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*entities.User, error) {
	if !isID(id) {
		return nil, domainerrors.ErrUserNotFound
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound
	}
	return user, nil
}
