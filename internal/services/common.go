package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/timetracker-api/internal/constants"
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// lookupErr converts a repository lookup failure into NotFound when the row
// is missing, and wraps anything else.
func lookupErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierrors.NewNotFound(entity + " not found")
	}
	return fmt.Errorf("failed to find %s: %w", strings.ToLower(entity), err)
}

// insertErr reports a unique-key violation as Conflict, so an insert that
// loses a race with a concurrent one fails like the up-front check would.
func insertErr(err error, entity, conflict string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierrors.NewConflict(conflict)
	}
	return fmt.Errorf("failed to create %s: %w", entity, err)
}

func hashPassword(password string) (string, error) {
	if len(password) < constants.MinPasswordLength {
		return "", apierrors.NewValidation("password",
			fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", apierrors.NewValidation("email", "A valid email is required")
	}
	return email, nil
}

func validateNonNegative(field string, v *float64) error {
	if v != nil && *v < 0 {
		return apierrors.NewValidation(field, field+" cannot be negative")
	}
	return nil
}
