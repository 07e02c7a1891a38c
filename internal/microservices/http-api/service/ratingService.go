package service

import (
	"errors"

	"novelhub/internal/microservices/http-api/dto"
	"novelhub/internal/microservices/http-api/models"
	"novelhub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

type RatingService interface {
	RateNovel(userID, novelID string, score int) (*dto.RatingResponse, error)
	GetUserRating(userID, novelID string) (*dto.RatingResponse, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	novelRepo  repository.NovelRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, novelRepo repository.NovelRepository) RatingService {
	return &ratingService{ratingRepo: ratingRepo, novelRepo: novelRepo}
}

// RateNovel upserts the user's score and folds the new average back onto the
// novel row so list views can show it without a join.
func (s *ratingService) RateNovel(userID, novelID string, score int) (*dto.RatingResponse, error) {
	novel, err := s.novelRepo.GetByID(novelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNovelNotFound
		}
		return nil, err
	}

	rating := &models.Rating{
		UserID:  userID,
		NovelID: novelID,
		Score:   score,
	}
	if err := s.ratingRepo.Upsert(rating); err != nil {
		return nil, err
	}

	avg, count, err := s.ratingRepo.AverageForNovel(novelID)
	if err != nil {
		return nil, err
	}

	novel.AverageRating = &avg
	if err := s.novelRepo.Update(novel); err != nil {
		return nil, err
	}

	return &dto.RatingResponse{
		NovelID:       novelID,
		Score:         score,
		AverageRating: &avg,
		RatingCount:   count,
	}, nil
}

func (s *ratingService) GetUserRating(userID, novelID string) (*dto.RatingResponse, error) {
	rating, err := s.ratingRepo.GetByUserAndNovel(userID, novelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}

	avg, count, err := s.ratingRepo.AverageForNovel(novelID)
	if err != nil {
		return nil, err
	}

	return &dto.RatingResponse{
		NovelID:       novelID,
		Score:         rating.Score,
		AverageRating: &avg,
		RatingCount:   count,
	}, nil
}
