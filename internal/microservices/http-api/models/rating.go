package models

import "time"

type Rating struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_rating_user_novel"`
	NovelID   string    `json:"novelId" gorm:"type:uuid;not null;uniqueIndex:idx_rating_user_novel"`
	Score     int       `json:"score" gorm:"not null;check:score >= 1 AND score <= 5"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// Associations
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Novel *Novel `json:"novel,omitempty" gorm:"foreignKey:NovelID;constraint:OnDelete:CASCADE;"`
}

func (Rating) TableName() string {
	return "ratings"
}
