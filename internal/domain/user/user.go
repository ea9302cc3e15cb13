package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	IsApproved   bool      `json:"isApproved"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("user not found")

// registration attempts on an email that is already taken.
var ErrEmailTaken = errors.New("email already in use")

type RegisterRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=80"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,min=7,max=20"`
	Password    string `json:"password" binding:"required,min=6"`
}

// partial profile update, nil fields keep their stored value.
type UpdateProfileRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=80"`
	PhoneNumber *string `json:"phoneNumber" binding:"omitempty,min=7,max=20"`
}

// New builds an unapproved account from the register payload.
// Approval is a separate admin action.
func New(req RegisterRequest, passwordHash string) User {
	now := time.Now().UTC()
	return User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: passwordHash,
		IsApproved:   false,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
