package models

import "time"

type Favorite struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_novel"`
	NovelID   string    `json:"novelId" gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_novel"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`

	// Associations
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Novel *Novel `json:"novel,omitempty" gorm:"foreignKey:NovelID;constraint:OnDelete:CASCADE;"`
}

func (Favorite) TableName() string {
	return "favorites"
}
