package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:30;uniqueIndex"`
	FullName  string    `json:"full_name" gorm:"size:100"`
	Email     string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Password  string    `json:"-"`                        // Store hashed password, ignore for JSON serialization
	IsPrivate bool      `json:"is_private" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// UserCompact is the public projection of a user embedded in other payloads.
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, FullName: u.FullName}
}

type SignupRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=30"`
	FullName  string `json:"full_name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	IsPrivate bool   `json:"is_private"`
}

// UpdateProfileRequest carries the fields a user may change on their own
// profile. Pointer fields distinguish "leave unchanged" from a zero value.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	IsPrivate *bool   `json:"is_private"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
