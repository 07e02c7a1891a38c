package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Novel is a catalog entry. Source/SourceRef identify the upstream record
// for imported novels so re-syncs update in place instead of duplicating.
type Novel struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid"`
	Slug          string    `json:"slug" gorm:"uniqueIndex;not null;size:200"`
	Title         string    `json:"title" gorm:"not null;size:300;index"`
	Author        *string   `json:"author,omitempty" gorm:"size:200"`
	Status        *string   `json:"status,omitempty" gorm:"size:20"` // ongoing, completed, hiatus
	Description   *string   `json:"description,omitempty" gorm:"type:text"`
	CoverURL      *string   `json:"coverUrl,omitempty" gorm:"size:500"`
	Source        *string   `json:"-" gorm:"size:50;index:idx_novel_source_ref"`
	SourceRef     *string   `json:"-" gorm:"size:100;index:idx_novel_source_ref"`
	TotalChapters int       `json:"totalChapters" gorm:"default:0"`
	ViewCount     int64     `json:"viewCount" gorm:"default:0"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	CreatedAt     time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// Associations
	Chapters []Chapter `json:"chapters,omitempty" gorm:"foreignKey:NovelID"`
}

func (novel *Novel) BeforeCreate(tx *gorm.DB) (err error) {
	if novel.ID == "" {
		novel.ID = uuid.New().String()
	}
	return
}

func (Novel) TableName() string {
	return "novels"
}
