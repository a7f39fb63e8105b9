package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yukikurage/timetracker-api/internal/models"
)

// TokenType distinguishes session tokens from password reset tokens.
type TokenType string

const (
	TokenTypeAccess TokenType = "access"
	TokenTypeReset  TokenType = "reset"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims represents the JWT claims used for both token types.
type Claims struct {
	jwt.RegisteredClaims
	Type TokenType `json:"type"`
}

// TokenService issues and verifies signed tokens.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	resetTTL  time.Duration
	issuer    string
}

// NewTokenService creates a new TokenService.
func NewTokenService(secret string, accessTTL, resetTTL time.Duration) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		resetTTL:  resetTTL,
		issuer:    "timetracker",
	}
}

// IssueAccessToken creates an access token whose subject is the user ID.
func (s *TokenService) IssueAccessToken(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.accessTTL)
	token, err := s.sign(strconv.FormatUint(user.ID, 10), TokenTypeAccess, expiresAt)
	return token, expiresAt, err
}

// IssueResetToken creates a password reset token whose subject is the email.
func (s *TokenService) IssueResetToken(email string) (string, error) {
	return s.sign(email, TokenTypeReset, time.Now().Add(s.resetTTL))
}

func (s *TokenService) sign(subject string, typ TokenType, expiresAt time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Type: typ,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the token and requires it to be of the given type.
func (s *TokenService) Parse(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Type != want {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// AccessTTL returns the access token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}
