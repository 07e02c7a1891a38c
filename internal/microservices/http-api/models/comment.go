package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment hangs off exactly one of Novel/Chapter; replies reference their
// parent comment and inherit its subject. Deleting a comment cascades to the
// whole reply subtree at the database level, matching what the client does to
// its local forest.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string    `json:"userId" gorm:"type:uuid;not null;index"`
	NovelID   *string   `json:"novelId,omitempty" gorm:"type:uuid;index"`
	ChapterID *string   `json:"chapterId,omitempty" gorm:"type:uuid;index"`
	ParentID  *string   `json:"parentId,omitempty" gorm:"type:uuid;index"`
	Content   string    `json:"content" gorm:"not null;type:text"`
	Edited    bool      `json:"edited" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// Associations
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Novel   *Novel   `json:"novel,omitempty" gorm:"foreignKey:NovelID;constraint:OnDelete:CASCADE;"`
	Chapter *Chapter `json:"chapter,omitempty" gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE;"`
	Parent  *Comment `json:"parent,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE;"`
}

func (comment *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	return
}

func (Comment) TableName() string {
	return "comments"
}
