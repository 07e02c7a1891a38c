package dto

import (
	"time"

	"novelhub/internal/microservices/http-api/models"
)

// CreateNovelDTO for admin novel creation
type CreateNovelDTO struct {
	Title       string  `json:"title" binding:"required,min=1,max=300"`
	Slug        string  `json:"slug" binding:"required,min=1,max=200"`
	Author      *string `json:"author"`
	Status      *string `json:"status" binding:"omitempty,oneof=ongoing completed hiatus"`
	Description *string `json:"description"`
	CoverURL    *string `json:"coverUrl" binding:"omitempty,url"`
}

// UpdateNovelDTO for admin novel updates; nil fields are left alone
type UpdateNovelDTO struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=300"`
	Author      *string `json:"author"`
	Status      *string `json:"status" binding:"omitempty,oneof=ongoing completed hiatus"`
	Description *string `json:"description"`
	CoverURL    *string `json:"coverUrl" binding:"omitempty,url"`
}

type NovelResponse struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Author        *string   `json:"author,omitempty"`
	Status        *string   `json:"status,omitempty"`
	Description   *string   `json:"description,omitempty"`
	CoverURL      *string   `json:"coverUrl,omitempty"`
	TotalChapters int       `json:"totalChapters"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	ViewCount     int64     `json:"viewCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

func FromModelToNovelResponse(novel *models.Novel) *NovelResponse {
	return &NovelResponse{
		ID:            novel.ID,
		Slug:          novel.Slug,
		Title:         novel.Title,
		Author:        novel.Author,
		Status:        novel.Status,
		Description:   novel.Description,
		CoverURL:      novel.CoverURL,
		TotalChapters: novel.TotalChapters,
		AverageRating: novel.AverageRating,
		ViewCount:     novel.ViewCount,
		CreatedAt:     novel.CreatedAt,
	}
}

type PaginatedNovelResponse struct {
	Content       []NovelResponse `json:"content"`
	TotalElements int64           `json:"totalElements"`
	Page          int             `json:"page"`
	Size          int             `json:"size"`
}

// ChapterResponse omits chapter content in list views; the reader endpoint
// returns the full body.
type ChapterResponse struct {
	ID        string    `json:"id"`
	NovelID   string    `json:"novelId"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	WordCount int       `json:"wordCount"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromModelToChapterResponse(chapter *models.Chapter, withContent bool) *ChapterResponse {
	resp := &ChapterResponse{
		ID:        chapter.ID,
		NovelID:   chapter.NovelID,
		Number:    chapter.Number,
		Title:     chapter.Title,
		WordCount: chapter.WordCount,
		CreatedAt: chapter.CreatedAt,
	}
	if withContent {
		resp.Content = chapter.Content
	}
	return resp
}
