package service

import (
	"errors"

	"novelhub/internal/microservices/http-api/dto"
	"novelhub/internal/microservices/http-api/models"
	"novelhub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

type FavoriteService interface {
	AddFavorite(userID, novelID string) error
	RemoveFavorite(userID, novelID string) error
	ListFavorites(userID string, page, size int) (*dto.PaginatedNovelResponse, error)
	IsFavorite(userID, novelID string) (bool, error)
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	novelRepo    repository.NovelRepository
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, novelRepo repository.NovelRepository) FavoriteService {
	return &favoriteService{favoriteRepo: favoriteRepo, novelRepo: novelRepo}
}

func (s *favoriteService) AddFavorite(userID, novelID string) error {
	ok, err := s.novelRepo.Exists(novelID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNovelNotFound
	}
	return s.favoriteRepo.Add(&models.Favorite{UserID: userID, NovelID: novelID})
}

func (s *favoriteService) RemoveFavorite(userID, novelID string) error {
	return s.favoriteRepo.Remove(userID, novelID)
}

func (s *favoriteService) ListFavorites(userID string, page, size int) (*dto.PaginatedNovelResponse, error) {
	favorites, total, err := s.favoriteRepo.ListByUser(userID, page, size)
	if err != nil {
		return nil, err
	}

	novels := make([]dto.NovelResponse, 0, len(favorites))
	for i := range favorites {
		if favorites[i].Novel == nil {
			continue
		}
		novels = append(novels, *dto.FromModelToNovelResponse(favorites[i].Novel))
	}
	return &dto.PaginatedNovelResponse{
		Content:       novels,
		TotalElements: total,
		Page:          page,
		Size:          size,
	}, nil
}

func (s *favoriteService) IsFavorite(userID, novelID string) (bool, error) {
	exists, err := s.favoriteRepo.Exists(userID, novelID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return exists, nil
}
