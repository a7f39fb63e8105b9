package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/yukikurage/timetracker-api/internal/config"
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
	notifier Notifier
	log      *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, notifier Notifier, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
	}
}

// NewAuthServiceFromConfig wires the token service from cfg.
func NewAuthServiceFromConfig(cfg *config.Config, userRepo repository.UserRepository, notifier Notifier, log *zap.Logger) *AuthService {
	return NewAuthService(userRepo, NewTokenService(cfg.SecretKey, cfg.AccessTokenTTL, cfg.ResetTokenTTL), notifier, log)
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email    string
	Password string
	FullName string
}

// Signup creates an active EMPLOYEE account.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, apierrors.NewConflict("The user with this email already exists in the system")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		FullName:     input.FullName,
		PasswordHash: hashed,
		Role:         models.RoleEmployee,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, insertErr(err, "user", "The user with this email already exists in the system")
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the authenticated user and a fresh access token.
type LoginResult struct {
	User        *models.User
	AccessToken string
	ExpiresIn   int
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apierrors.NewValidation("", "Inactive user")
	}

	token, _, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// Authenticate resolves the active user behind an access token.
func (s *AuthService) Authenticate(token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token, TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return s.GetActiveUser(userID)
}

// GetActiveUser loads a user for an authenticated request.
func (s *AuthService) GetActiveUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// ForgotPassword sends a reset token to an active account. It reports
// success whether or not the account exists.
func (s *AuthService) ForgotPassword(email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil
	}

	token, err := s.tokens.IssueResetToken(user.Email)
	if err != nil {
		return err
	}

	Dispatch(s.log, "password_reset", func(ctx context.Context) error {
		return s.notifier.SendPasswordReset(ctx, user.Email, token)
	})
	return nil
}

// ResetPassword sets a new password using a reset token.
func (s *AuthService) ResetPassword(token, newPassword string) error {
	claims, err := s.tokens.Parse(token, TokenTypeReset)
	if err != nil {
		return apierrors.NewValidation("token", "Invalid token")
	}

	user, err := s.userRepo.FindByEmail(claims.Subject)
	if err != nil {
		return lookupErr(err, "User")
	}
	if !user.IsActive {
		return apierrors.NewValidation("", "Inactive user")
	}

	hashed, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
