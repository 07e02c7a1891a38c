package repository

import (
	"novelhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	Upsert(rating *models.Rating) error
	GetByUserAndNovel(userID, novelID string) (*models.Rating, error)
	AverageForNovel(novelID string) (float64, int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert writes the user's rating, replacing any previous score for the same
// novel.
func (r *ratingRepository) Upsert(rating *models.Rating) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "novel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(rating).Error
}

func (r *ratingRepository) GetByUserAndNovel(userID, novelID string) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.Where("user_id = ? AND novel_id = ?", userID, novelID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// AverageForNovel returns the mean score and the number of ratings.
func (r *ratingRepository) AverageForNovel(novelID string) (float64, int64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&models.Rating{}).
		Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS count").
		Where("novel_id = ?", novelID).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Avg, result.Count, nil
}
