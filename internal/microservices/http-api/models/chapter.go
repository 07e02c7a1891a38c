package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chapter struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	NovelID   string    `json:"novelId" gorm:"type:uuid;not null;uniqueIndex:idx_chapter_novel_number"`
	Number    int       `json:"number" gorm:"not null;uniqueIndex:idx_chapter_novel_number"`
	Title     string    `json:"title" gorm:"not null;size:300"`
	Content   string    `json:"content" gorm:"type:text"`
	WordCount int       `json:"wordCount" gorm:"default:0"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// Associations
	Novel *Novel `json:"novel,omitempty" gorm:"foreignKey:NovelID;constraint:OnDelete:CASCADE;"`
}

func (chapter *Chapter) BeforeCreate(tx *gorm.DB) (err error) {
	if chapter.ID == "" {
		chapter.ID = uuid.New().String()
	}
	return
}

func (Chapter) TableName() string {
	return "chapters"
}
