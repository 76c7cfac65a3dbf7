package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrEmailRequired      = apperror.New(http.StatusBadRequest, "email is required")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
)

// User represents an account in the system. Guests book under their own
// user id; hotel administrators additionally carry the admin flag.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	DisplayName  string
	IsAdmin      bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}
