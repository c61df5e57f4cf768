package models

import "time"

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	IsVerified   bool       `gorm:"default:false" json:"is_verified"`

	// Relations
	Profile       *Profile          `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Vehicles      []Vehicle         `gorm:"foreignKey:OwnerID" json:"-"`
	Subscription  *UserSubscription `gorm:"foreignKey:UserID" json:"-"`
	RefreshTokens []RefreshToken    `gorm:"foreignKey:UserID" json:"-"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}

// Profile holds contact data and the last known position of a user.
type Profile struct {
	BaseModel
	UserID   string `gorm:"uniqueIndex;not null" json:"user_id"`
	Name     string `gorm:"not null" json:"name"`
	Phone    string `json:"phone"`
	Document string `json:"document"` // CPF/CNPJ
	City     string `json:"city"`

	// Last known position, written by the location tracker.
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	LocatedAt *time.Time `json:"located_at,omitempty"`
}
