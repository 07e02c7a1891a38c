package service

import (
	"errors"

	"novelhub/internal/microservices/http-api/dto"
	"novelhub/internal/microservices/http-api/models"
	"novelhub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

var ErrSlugInUse = errors.New("slug already in use")

type NovelService interface {
	CreateNovel(req *dto.CreateNovelDTO) (*dto.NovelResponse, error)
	UpdateNovel(novelID string, req *dto.UpdateNovelDTO) (*dto.NovelResponse, error)
	GetNovelBySlug(slug string) (*dto.NovelResponse, error)
	ListNovels(page, size int, search string) (*dto.PaginatedNovelResponse, error)
	ListChapters(novelID string, page, size int) ([]dto.ChapterResponse, int64, error)
	GetChapter(novelID string, number int) (*dto.ChapterResponse, error)
}

type novelService struct {
	novelRepo   repository.NovelRepository
	chapterRepo repository.ChapterRepository
}

func NewNovelService(novelRepo repository.NovelRepository, chapterRepo repository.ChapterRepository) NovelService {
	return &novelService{novelRepo: novelRepo, chapterRepo: chapterRepo}
}

func (s *novelService) CreateNovel(req *dto.CreateNovelDTO) (*dto.NovelResponse, error) {
	if _, err := s.novelRepo.GetBySlug(req.Slug); err == nil {
		return nil, ErrSlugInUse
	}

	novel := &models.Novel{
		Title:       req.Title,
		Slug:        req.Slug,
		Author:      req.Author,
		Status:      req.Status,
		Description: req.Description,
		CoverURL:    req.CoverURL,
	}
	if err := s.novelRepo.Create(novel); err != nil {
		return nil, err
	}
	return dto.FromModelToNovelResponse(novel), nil
}

func (s *novelService) UpdateNovel(novelID string, req *dto.UpdateNovelDTO) (*dto.NovelResponse, error) {
	novel, err := s.novelRepo.GetByID(novelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNovelNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		novel.Title = *req.Title
	}
	if req.Author != nil {
		novel.Author = req.Author
	}
	if req.Status != nil {
		novel.Status = req.Status
	}
	if req.Description != nil {
		novel.Description = req.Description
	}
	if req.CoverURL != nil {
		novel.CoverURL = req.CoverURL
	}

	if err := s.novelRepo.Update(novel); err != nil {
		return nil, err
	}
	return dto.FromModelToNovelResponse(novel), nil
}

// GetNovelBySlug also counts the visit; view counting is fire-and-forget so
// a failed increment never blocks the read.
func (s *novelService) GetNovelBySlug(slug string) (*dto.NovelResponse, error) {
	novel, err := s.novelRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNovelNotFound
		}
		return nil, err
	}

	_ = s.novelRepo.IncrementViewCount(novel.ID)

	return dto.FromModelToNovelResponse(novel), nil
}

func (s *novelService) ListNovels(page, size int, search string) (*dto.PaginatedNovelResponse, error) {
	novels, total, err := s.novelRepo.List(page, size, search)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.NovelResponse, 0, len(novels))
	for i := range novels {
		responses = append(responses, *dto.FromModelToNovelResponse(&novels[i]))
	}
	return &dto.PaginatedNovelResponse{
		Content:       responses,
		TotalElements: total,
		Page:          page,
		Size:          size,
	}, nil
}

func (s *novelService) ListChapters(novelID string, page, size int) ([]dto.ChapterResponse, int64, error) {
	ok, err := s.novelRepo.Exists(novelID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrNovelNotFound
	}

	chapters, total, err := s.chapterRepo.ListByNovel(novelID, page, size)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]dto.ChapterResponse, 0, len(chapters))
	for i := range chapters {
		responses = append(responses, *dto.FromModelToChapterResponse(&chapters[i], false))
	}
	return responses, total, nil
}

func (s *novelService) GetChapter(novelID string, number int) (*dto.ChapterResponse, error) {
	chapter, err := s.chapterRepo.GetByNovelAndNumber(novelID, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, err
	}
	return dto.FromModelToChapterResponse(chapter, true), nil
}
