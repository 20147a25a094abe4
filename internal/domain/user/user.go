package user

import (
	"time"

	"devsync/internal/common"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Profile struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Location  string `json:"location,omitempty"`
}

type SocialLinks struct {
	GitHub    string `json:"github,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

type User struct {
	ID           common.UUID `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Profile      Profile     `json:"profile"`
	SocialLinks  SocialLinks `json:"social_links"`
	Titles       []string    `json:"titles"`
	Skills       []string    `json:"skills"`
	Role         Role        `json:"role"`
	Active       bool        `json:"active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
