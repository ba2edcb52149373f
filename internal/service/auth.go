package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
	"github.com/JonnyWalker81/moodlens/backend/internal/models"
	"github.com/JonnyWalker81/moodlens/backend/internal/repository"
	"github.com/JonnyWalker81/moodlens/backend/pkg/supabase"
)

// ErrAuthUnavailable is returned by password auth when no identity provider is configured
var ErrAuthUnavailable = errors.New("password authentication is not configured")

// IdentityProvider is the part of the Supabase auth API used for password logins
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	SignUp(ctx context.Context, email, password string) (*supabase.Session, error)
}

type authService struct {
	identity IdentityProvider
	userRepo repository.UserRepository
}

// NewAuthService creates a new auth service. identity may be nil for local stores.
func NewAuthService(identity IdentityProvider, userRepo repository.UserRepository) AuthService {
	return &authService{
		identity: identity,
		userRepo: userRepo,
	}
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if s.identity == nil {
		return nil, ErrAuthUnavailable
	}

	session, err := s.identity.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return authResponse(session), nil
}

func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if s.identity == nil {
		return nil, ErrAuthUnavailable
	}

	session, err := s.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// The auth user already exists at this point; a duplicate profile row is fine
	if _, err := s.userRepo.Create(ctx, &models.User{ID: session.User.ID, Email: session.User.Email}); err != nil && !errors.Is(err, repository.ErrConflict) {
		logger.Ctx(ctx).Warn("failed to create user profile",
			logger.Err(err),
			logger.String("user_id", session.User.ID),
		)
	}

	return authResponse(session), nil
}

func (s *authService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

func authResponse(session *supabase.Session) *models.AuthResponse {
	return &models.AuthResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		User: models.User{
			ID:    session.User.ID,
			Email: session.User.Email,
		},
	}
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user preference service
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetOrCreate(ctx context.Context, userID, email string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// New users start without AI consent
	user, err = s.userRepo.Create(ctx, &models.User{ID: userID, Email: email})
	if errors.Is(err, repository.ErrConflict) {
		return s.userRepo.GetByID(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, userID, email string, req *models.UpdatePreferencesRequest) (*models.User, error) {
	if _, err := s.GetOrCreate(ctx, userID, email); err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdatePreferences(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	logger.Ctx(ctx).Info("preferences updated",
		logger.Bool("ai_consent", user.AIConsent),
	)
	return user, nil
}
