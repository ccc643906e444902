package auth

import "churchflow-backend/internal/pkg/apperr"

var (
	ErrMissingFields      = apperr.Validation("Missing required fields")
	ErrUserExists         = apperr.Conflict("User already exists")
	ErrInvalidCredentials = apperr.Unauthorized("Invalid credentials")
	ErrUnauthorized       = apperr.Unauthorized("Unauthorized")
	ErrInvalidToken       = apperr.Unauthorized("Invalid token")
	ErrUserNotFound       = apperr.NotFound("User not found")
)
