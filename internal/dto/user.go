package dto

import (
	"time"

	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64      `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	Role        models.Role `json:"role"`
	IsSuperuser bool        `json:"is_superuser"`
	IsActive    bool        `json:"is_active"`
	HourlyRate  *float64    `json:"hourly_rate"`
	CreatedAt   time.Time   `json:"created_at"`
}

// UserSummaryDTO is the short form embedded in other resources
type UserSummaryDTO struct {
	ID       uint64      `json:"id"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO `json:"users"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// TokenResponse is returned by login
type TokenResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int     `json:"expires_in"`
	User        UserDTO `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Role:        user.Role,
		IsSuperuser: user.IsSuperuser,
		IsActive:    user.IsActive,
		HourlyRate:  user.HourlyRate,
		CreatedAt:   user.CreatedAt,
	}
}

// ToUserSummaryDTO converts a User model to UserSummaryDTO
func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return items
}

// ToUserListResponse converts a page of users to UserListResponse
func ToUserListResponse(users []models.User, page utils.PageRequest, totalCount int64) UserListResponse {
	return UserListResponse{
		Users:      ToUserDTOs(users),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: totalCount,
		TotalPages: page.TotalPages(totalCount),
	}
}
