package user

import (
	"context"
	"errors"
	"strings"

	"github.com/grivax/grivax-api/internal/auth"
	"github.com/grivax/grivax-api/internal/config"
	util "github.com/grivax/grivax-api/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type UserService interface {
	Signup(ctx context.Context, dto SignupDTO) (*User, bool, error)
	Authenticate(ctx context.Context, dto LoginDTO) (*User, error)
	UpsertOAuthUser(ctx context.Context, provider, email, name string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type userService struct {
	repo UserRepository
}

func NewService(repo UserRepository) UserService {
	return &userService{repo: repo}
}

// Signup creates the account unless the email is already registered, in which case
// the existing user is returned with created=false.
func (s *userService) Signup(ctx context.Context, dto SignupDTO) (*User, bool, error) {
	log := config.WithContext(ctx)
	email := normalizeEmail(dto.Email)

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		log.WithError(err).Error("Failed to look up user by email")
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	u := &User{
		UserID:   util.ShortID(),
		Email:    email,
		Name:     dto.Name,
		Provider: dto.OAuthProvider,
	}
	if dto.OAuthProvider == "" {
		hashed, err := auth.HashPassword(dto.Password)
		if err != nil {
			log.WithError(err).Error("Failed to hash password")
			return nil, false, err
		}
		u.Password = hashed
	}

	if err := s.repo.Create(ctx, u); err != nil {
		log.WithError(err).Error("Failed to create user")
		return nil, false, err
	}

	log.WithField("new_user_id", u.UserID).Info("User created")
	return u, true, nil
}

func (s *userService) Authenticate(ctx context.Context, dto LoginDTO) (*User, error) {
	log := config.WithContext(ctx)

	u, err := s.repo.GetByEmail(ctx, normalizeEmail(dto.Email))
	if err != nil {
		log.WithError(err).Error("Failed to look up user by email")
		return nil, err
	}
	if u == nil || !auth.CheckPassword(u.Password, dto.Password) {
		log.Warn("Rejected credential sign-in")
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) UpsertOAuthUser(ctx context.Context, provider, email, name string) (*User, error) {
	u, created, err := s.Signup(ctx, SignupDTO{Name: name, Email: email, OAuthProvider: provider})
	if err != nil {
		return nil, err
	}
	if created {
		config.WithContext(ctx).WithField("provider", provider).Info("User registered through OAuth")
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to get user")
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
