package middleware

import (
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timetracker-api/internal/constants"
	apierrors "github.com/yukikurage/timetracker-api/internal/errors"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/services"
)

// Authenticator resolves the acting user of a request
type Authenticator interface {
	Authenticate(token string) (*models.User, error)
	GetActiveUser(id uint64) (*models.User, error)
}

// RequireAuth resolves the user from a Bearer token, falling back to the
// login session, and aborts with 401 when neither identifies an active user.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			user *models.User
			err  error
		)

		if token, ok := bearerToken(c); ok {
			user, err = auth.Authenticate(token)
		} else if userID, ok := sessionUserID(c); ok {
			user, err = auth.GetActiveUser(userID)
		} else {
			apierrors.Unauthorized(c, "Not authenticated")
			return
		}

		if err != nil {
			switch {
			case errors.Is(err, services.ErrInactiveUser):
				apierrors.BadRequest(c, "Inactive user")
			case errors.Is(err, services.ErrInvalidToken):
				apierrors.Unauthorized(c, "")
			default:
				apierrors.Respond(c, err)
			}
			return
		}

		// Store user in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func sessionUserID(c *gin.Context) (uint64, bool) {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return 0, false
	}
	return toUserID(sessions.Default(c).Get(constants.ContextKeyUserID))
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(userID)
}

// GetCurrentUser retrieves the user loaded by RequireAuth
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func toUserID(v interface{}) (uint64, bool) {
	switch v := v.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
