package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string     `gorm:"uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"column:password_hash;not null" json:"-"` // never serialized
	DisplayName string     `gorm:"size:100" json:"displayName,omitempty"`
	Role        string     `gorm:"default:'user';not null" json:"role"` // "user" or "admin"
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (User) TableName() string {
	return "users"
}
