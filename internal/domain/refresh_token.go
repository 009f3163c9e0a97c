package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken - сессия сотрудника; в БД хранится только хеш токена
type RefreshToken struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	TokenHash string     `json:"-"`
	UserAgent string     `json:"user_agent,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// IsValidAt проверяет, что токен не отозван и не истек к моменту now
func (rt *RefreshToken) IsValidAt(now time.Time) bool {
	return rt.RevokedAt == nil && now.Before(rt.ExpiresAt)
}
