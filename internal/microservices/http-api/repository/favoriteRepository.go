package repository

import (
	"errors"

	"novelhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository interface {
	Add(favorite *models.Favorite) error
	Remove(userID, novelID string) error
	ListByUser(userID string, page, size int) ([]models.Favorite, int64, error)
	Exists(userID, novelID string) (bool, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add is idempotent: favoriting an already-favorited novel is a no-op.
func (r *favoriteRepository) Add(favorite *models.Favorite) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(favorite).Error
}

func (r *favoriteRepository) Remove(userID, novelID string) error {
	result := r.db.Where("user_id = ? AND novel_id = ?", userID, novelID).Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("favorite not found")
	}
	return nil
}

func (r *favoriteRepository) ListByUser(userID string, page, size int) ([]models.Favorite, int64, error) {
	var favorites []models.Favorite
	var total int64

	if err := r.db.Model(&models.Favorite{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("user_id = ?", userID).
		Preload("Novel").
		Order("added_at DESC").
		Limit(size).
		Offset(page * size).
		Find(&favorites).Error
	if err != nil {
		return nil, 0, err
	}

	return favorites, total, nil
}

func (r *favoriteRepository) Exists(userID, novelID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Favorite{}).
		Where("user_id = ? AND novel_id = ?", userID, novelID).
		Count(&count).Error
	return count > 0, err
}
