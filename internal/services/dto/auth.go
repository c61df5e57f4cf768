package dto

import (
	"time"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

type RegisterRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     models.UserRole `json:"role" binding:"required,oneof=client mechanic tow insurer"`

	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone,omitempty"`
	Document string `json:"document,omitempty"` // CPF or CNPJ
	City     string `json:"city,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

type UserDTO struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	Role          models.UserRole   `json:"role"`
	Status        models.UserStatus `json:"status"`
	IsVerified    bool              `json:"is_verified"`
	DashboardPath string            `json:"dashboard_path"`
	CreatedAt     time.Time         `json:"created_at"`
}

// SessionDTO is the resolved session served to dashboards. Cached with a
// short freshness window, so Name/City may lag a profile edit slightly.
type SessionDTO struct {
	UserID        string          `json:"user_id"`
	Email         string          `json:"email"`
	Role          models.UserRole `json:"role"`
	Name          string          `json:"name"`
	City          string          `json:"city"`
	DashboardPath string          `json:"dashboard_path"`
	Subscribed    bool            `json:"subscribed"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=2"`
	Phone    *string `json:"phone,omitempty"`
	Document *string `json:"document,omitempty"`
	City     *string `json:"city,omitempty"`
}

type ProfileResponse struct {
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Document  string     `json:"document"`
	City      string     `json:"city"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	LocatedAt *time.Time `json:"located_at,omitempty"`
}

func NewUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:            user.ID,
		Email:         user.Email,
		Role:          user.Role,
		Status:        user.Status,
		IsVerified:    user.IsVerified,
		DashboardPath: user.Role.DashboardPath(),
		CreatedAt:     user.CreatedAt,
	}
}

func NewProfileResponse(profile *models.Profile) *ProfileResponse {
	return &ProfileResponse{
		UserID:    profile.UserID,
		Name:      profile.Name,
		Phone:     profile.Phone,
		Document:  profile.Document,
		City:      profile.City,
		Latitude:  profile.Latitude,
		Longitude: profile.Longitude,
		LocatedAt: profile.LocatedAt,
	}
}
