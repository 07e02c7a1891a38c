package repository

import (
	"novelhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type NovelRepository interface {
	Create(novel *models.Novel) error
	Update(novel *models.Novel) error
	GetByID(novelID string) (*models.Novel, error)
	GetBySlug(slug string) (*models.Novel, error)
	List(page, size int, search string) ([]models.Novel, int64, error)
	Exists(novelID string) (bool, error)
	IncrementViewCount(novelID string) error
	UpsertBySourceRef(novel *models.Novel) error
}

type novelRepository struct {
	db *gorm.DB
}

func NewNovelRepository(db *gorm.DB) NovelRepository {
	return &novelRepository{db: db}
}

func (r *novelRepository) Create(novel *models.Novel) error {
	return r.db.Create(novel).Error
}

func (r *novelRepository) Update(novel *models.Novel) error {
	return r.db.Save(novel).Error
}

func (r *novelRepository) GetByID(novelID string) (*models.Novel, error) {
	var novel models.Novel
	if err := r.db.Where("id = ?", novelID).First(&novel).Error; err != nil {
		return nil, err
	}
	return &novel, nil
}

func (r *novelRepository) GetBySlug(slug string) (*models.Novel, error) {
	var novel models.Novel
	if err := r.db.Where("slug = ?", slug).First(&novel).Error; err != nil {
		return nil, err
	}
	return &novel, nil
}

// List returns one page of novels, optionally filtered by a title substring.
func (r *novelRepository) List(page, size int, search string) ([]models.Novel, int64, error) {
	var novels []models.Novel
	var total int64

	query := r.db.Model(&models.Novel{})
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Limit(size).
		Offset(page * size).
		Find(&novels).Error
	if err != nil {
		return nil, 0, err
	}

	return novels, total, nil
}

func (r *novelRepository) Exists(novelID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Novel{}).Where("id = ?", novelID).Count(&count).Error
	return count > 0, err
}

func (r *novelRepository) IncrementViewCount(novelID string) error {
	return r.db.Model(&models.Novel{}).Where("id = ?", novelID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// UpsertBySourceRef creates or refreshes a novel imported by the sync
// service, keyed on (source, source_ref) so re-runs do not duplicate.
func (r *novelRepository) UpsertBySourceRef(novel *models.Novel) error {
	var existing models.Novel
	err := r.db.Where("source = ? AND source_ref = ?", novel.Source, novel.SourceRef).
		First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(novel).Error
	}
	if err != nil {
		return err
	}
	novel.ID = existing.ID
	novel.CreatedAt = existing.CreatedAt
	return r.db.Save(novel).Error
}
