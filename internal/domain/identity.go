package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated caller, resolved once per request by the auth middleware.
type Identity struct {
	PastorID  uuid.UUID
	ChurchID  uuid.UUID
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}
