package dto

import (
	"time"

	"novelhub/internal/microservices/http-api/models"
)

// CreateCommentDTO for creating a comment or a reply. Exactly one of
// NovelID/ChapterID is required for a top-level comment; replies may omit
// both and inherit the subject from their parent.
type CreateCommentDTO struct {
	Content   string  `json:"content" binding:"required,min=1,max=5000"`
	NovelID   *string `json:"novelId" binding:"omitempty,uuid"`
	ChapterID *string `json:"chapterId" binding:"omitempty,uuid"`
	ParentID  *string `json:"parentId" binding:"omitempty,uuid"`
}

// UpdateCommentDTO for editing a comment
type UpdateCommentDTO struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

// CommentResponse is the wire shape consumed by the web pages, the CLI and
// the push channel alike; the sync engine decodes exactly these fields.
type CommentResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	NovelID   *string   `json:"novelId,omitempty"`
	ChapterID *string   `json:"chapterId,omitempty"`
	ParentID  *string   `json:"parentId,omitempty"`
	Edited    bool      `json:"edited"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO
func FromModelToCommentResponse(comment *models.Comment) *CommentResponse {
	resp := &CommentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		UserID:    comment.UserID,
		NovelID:   comment.NovelID,
		ChapterID: comment.ChapterID,
		ParentID:  comment.ParentID,
		Edited:    comment.Edited,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
	if comment.User != nil {
		resp.Username = comment.User.Username
	}
	return resp
}

// PageResponse mirrors the paginated shape the web client expects:
// {content, totalElements, page, size, totalPages}.
type PageResponse struct {
	Content       []CommentResponse `json:"content"`
	TotalElements int64             `json:"totalElements"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalPages    int               `json:"totalPages"`
}

// NewPageResponse builds a page envelope around one page of comments.
func NewPageResponse(content []CommentResponse, total int64, page, size int) *PageResponse {
	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}
	return &PageResponse{
		Content:       content,
		TotalElements: total,
		Page:          page,
		Size:          size,
		TotalPages:    totalPages,
	}
}
