package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/timetracker-api/internal/constants"
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/permissions"
	"github.com/yukikurage/timetracker-api/internal/repository"
	"github.com/yukikurage/timetracker-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService handles account administration.
type UserService struct {
	userRepo      repository.UserRepository
	notifier      Notifier
	emailsEnabled bool
	log           *zap.Logger
}

// NewUserService creates a new UserService. New-account emails are only
// sent when emailsEnabled is true.
func NewUserService(userRepo repository.UserRepository, notifier Notifier, emailsEnabled bool, log *zap.Logger) *UserService {
	return &UserService{
		userRepo:      userRepo,
		notifier:      notifier,
		emailsEnabled: emailsEnabled,
		log:           log,
	}
}

// ListUsersInput represents filters for listing users
type ListUsersInput struct {
	Role *models.Role
	utils.PageRequest
}

// CreateUserInput represents input for creating a user
type CreateUserInput struct {
	Email       string
	Password    string
	FullName    string
	Role        models.Role
	IsSuperuser bool
	HourlyRate  *float64
}

// UpdateUserInput represents a sparse user update. Role, IsActive and
// IsSuperuser are honoured only for admin updates.
type UpdateUserInput struct {
	Email           *string
	Password        *string
	FullName        *string
	HourlyRate      *float64
	ClearHourlyRate bool
	Role            *models.Role
	IsActive        *bool
	IsSuperuser     *bool
}

// List returns every user to superusers and MANAGERs, and active employees to everyone else.
func (s *UserService) List(actor *models.User, input ListUsersInput) ([]models.User, int64, error) {
	filter := repository.UserFilter{Page: input.Page, PageSize: input.PageSize}
	if permissions.CanViewAllUsers(actor) {
		if input.Role != nil {
			if !input.Role.IsValid() {
				return nil, 0, apierrors.NewValidation("role", "Invalid role")
			}
			filter.Role = input.Role
		}
	} else {
		role := models.RoleEmployee
		filter.Role = &role
		filter.ActiveOnly = true
	}

	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// ListActiveByRole returns active users holding role, e.g. for manager pickers.
func (s *UserService) ListActiveByRole(role models.Role) ([]models.User, error) {
	users, _, err := s.userRepo.List(repository.UserFilter{Role: &role, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Get returns a user profile. Users may read themselves; superusers and MANAGERs may read anyone.
func (s *UserService) Get(actor *models.User, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "User")
	}
	if user.ID != actor.ID && !permissions.CanViewAllUsers(actor) {
		return nil, apierrors.NewPermissionDenied()
	}
	return user, nil
}

// Create creates an account on behalf of a superuser. A random password is
// generated when none is given; it only reaches the user through the
// new-account email.
func (s *UserService) Create(actor *models.User, input CreateUserInput) (*models.User, error) {
	if !permissions.CanManageUsers(actor) {
		return nil, apierrors.NewPermissionDenied()
	}

	if input.Password == "" {
		generated, err := utils.GeneratePassword(constants.GeneratedPasswordBytes)
		if err != nil {
			return nil, err
		}
		input.Password = generated
	}

	user, err := s.create(input)
	if err != nil {
		return nil, err
	}

	if s.emailsEnabled {
		password := input.Password
		Dispatch(s.log, "new_account", func(ctx context.Context) error {
			return s.notifier.SendNewAccount(ctx, user.Email, password)
		})
	}

	return user, nil
}

// CreateSuperuser bootstraps an ADMIN superuser. When onlyIfEmpty is set it
// fails with Conflict once any account exists.
func (s *UserService) CreateSuperuser(input CreateUserInput, onlyIfEmpty bool) (*models.User, error) {
	if onlyIfEmpty {
		count, err := s.userRepo.Count()
		if err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}
		if count > 0 {
			return nil, apierrors.NewConflict("Users already exist")
		}
	}

	input.Role = models.RoleAdmin
	input.IsSuperuser = true
	return s.create(input)
}

func (s *UserService) create(input CreateUserInput) (*models.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = models.RoleEmployee
	}
	if !input.Role.IsValid() {
		return nil, apierrors.NewValidation("role", "Invalid role")
	}
	if err := validateNonNegative("hourly_rate", input.HourlyRate); err != nil {
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
		Role:         input.Role,
		IsSuperuser:  input.IsSuperuser,
		IsActive:     true,
		HourlyRate:   input.HourlyRate,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, insertErr(err, "user", "The user with this email already exists in the system")
	}
	return user, nil
}

// UpdateMe updates the actor's own profile. Changing the hourly rate
// requires superuser or MANAGER rights; role and flags are ignored.
func (s *UserService) UpdateMe(actor *models.User, input UpdateUserInput) (*models.User, error) {
	if (input.HourlyRate != nil || input.ClearHourlyRate) && !permissions.CanSetHourlyRate(actor) {
		return nil, apierrors.NewPermissionDenied()
	}

	user, err := s.userRepo.FindByID(actor.ID)
	if err != nil {
		return nil, lookupErr(err, "User")
	}

	input.Role, input.IsActive, input.IsSuperuser = nil, nil, nil
	if err := s.apply(user, input); err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies an admin update to any user.
func (s *UserService) Update(actor *models.User, id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "User")
	}
	if !permissions.CanManageUsers(actor) {
		return nil, apierrors.NewPermissionDenied()
	}

	if err := s.apply(user, input); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRole changes a user's global role.
func (s *UserService) UpdateRole(actor *models.User, id uint64, role models.Role) (*models.User, error) {
	return s.Update(actor, id, UpdateUserInput{Role: &role})
}

func (s *UserService) apply(user *models.User, input UpdateUserInput) error {
	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return err
		}
		if email != user.Email {
			if _, err := s.userRepo.FindByEmail(email); err == nil {
				return apierrors.NewConflict("The user with this email already exists in the system")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check email: %w", err)
			}
			user.Email = email
		}
	}
	if input.Password != nil {
		hashed, err := hashPassword(*input.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hashed
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.ClearHourlyRate {
		user.HourlyRate = nil
	} else if input.HourlyRate != nil {
		if err := validateNonNegative("hourly_rate", input.HourlyRate); err != nil {
			return err
		}
		rate := *input.HourlyRate
		user.HourlyRate = &rate
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return apierrors.NewValidation("role", "Invalid role")
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.IsSuperuser != nil {
		user.IsSuperuser = *input.IsSuperuser
	}

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Delete removes a user. Users with open time entries or owned/managed
// projects cannot be deleted.
func (s *UserService) Delete(actor *models.User, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, lookupErr(err, "User")
	}
	if !permissions.CanManageUsers(actor) {
		return nil, apierrors.NewPermissionDenied()
	}
	if user.ID == actor.ID {
		return nil, apierrors.NewValidation("user_id", "Users cannot delete themselves")
	}

	if err := s.userRepo.Delete(id); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserHasOpenTimeEntries):
			return nil, apierrors.NewConflict("Cannot delete user with time entries that are not approved, rejected or billed")
		case errors.Is(err, repository.ErrUserOwnsProjects):
			return nil, apierrors.NewConflict("Cannot delete user who owns or manages projects")
		default:
			return nil, fmt.Errorf("failed to delete user: %w", err)
		}
	}
	return user, nil
}
