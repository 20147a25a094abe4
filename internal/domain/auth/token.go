package auth

import (
	"time"

	"devsync/internal/common"
)

type RefreshToken struct {
	Token     string      `json:"token"`
	UserID    common.UUID `json:"user_id"`
	ExpiresAt time.Time   `json:"expires_at"`
	CreatedAt time.Time   `json:"created_at"`
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
