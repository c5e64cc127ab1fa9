package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"unique;not null" json:"email"`
	Name         string    `json:"name,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`

	GoogleID           *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	GitHubID           *string `gorm:"uniqueIndex" json:"github_id,omitempty"`
	GoogleAccessToken  *string `json:"-"`
	GoogleRefreshToken *string `json:"-"`
	GitHubAccessToken  *string `json:"-"`
	Provider           *string `json:"provider,omitempty"`

	GoogleTokenExpiresAt *time.Time `json:"-"`
	GitHubTokenExpiresAt *time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
