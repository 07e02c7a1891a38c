package repository

import (
	"novelhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type ChapterRepository interface {
	Create(chapter *models.Chapter) error
	GetByID(chapterID string) (*models.Chapter, error)
	GetByNovelAndNumber(novelID string, number int) (*models.Chapter, error)
	ListByNovel(novelID string, page, size int) ([]models.Chapter, int64, error)
	Exists(chapterID string) (bool, error)
}

type chapterRepository struct {
	db *gorm.DB
}

func NewChapterRepository(db *gorm.DB) ChapterRepository {
	return &chapterRepository{db: db}
}

func (r *chapterRepository) Create(chapter *models.Chapter) error {
	return r.db.Create(chapter).Error
}

func (r *chapterRepository) GetByID(chapterID string) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := r.db.Where("id = ?", chapterID).First(&chapter).Error; err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (r *chapterRepository) GetByNovelAndNumber(novelID string, number int) (*models.Chapter, error) {
	var chapter models.Chapter
	err := r.db.Where("novel_id = ? AND number = ?", novelID, number).First(&chapter).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// ListByNovel returns chapter metadata in reading order; content is omitted
// from list queries to keep pages light.
func (r *chapterRepository) ListByNovel(novelID string, page, size int) ([]models.Chapter, int64, error) {
	var chapters []models.Chapter
	var total int64

	if err := r.db.Model(&models.Chapter{}).Where("novel_id = ?", novelID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Select("id", "novel_id", "number", "title", "word_count", "created_at", "updated_at").
		Where("novel_id = ?", novelID).
		Order("number ASC").
		Limit(size).
		Offset(page * size).
		Find(&chapters).Error
	if err != nil {
		return nil, 0, err
	}

	return chapters, total, nil
}

func (r *chapterRepository) Exists(chapterID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Chapter{}).Where("id = ?", chapterID).Count(&count).Error
	return count > 0, err
}
