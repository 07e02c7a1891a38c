package repository

import (
	"novelhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *models.Comment) error
	Update(comment *models.Comment) error
	Delete(commentID string) error
	GetByID(commentID string) (*models.Comment, error)
	GetByNovel(novelID string, page, size int, sortDir string) ([]models.Comment, int64, error)
	GetByChapter(chapterID string, page, size int, sortDir string) ([]models.Comment, int64, error)
	GetByUser(userID string, page, size int) ([]models.Comment, int64, error)
	GetReplies(parentID string, page, size int) ([]models.Comment, int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create a new comment
func (r *commentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// Update an existing comment
func (r *commentRepository) Update(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

// Delete removes a comment; the FK constraint cascades to the reply subtree.
// Ownership is checked by the service layer so admins can moderate.
func (r *commentRepository) Delete(commentID string) error {
	result := r.db.Where("id = ?", commentID).Delete(&models.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID retrieves a comment with its author loaded
func (r *commentRepository) GetByID(commentID string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Where("id = ?", commentID).
		Preload("User").
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByNovel returns one page of a novel's comments. The whole thread is
// returned flat (replies included); the client organizes it into a tree.
func (r *commentRepository) GetByNovel(novelID string, page, size int, sortDir string) ([]models.Comment, int64, error) {
	return r.pageBySubject("novel_id = ?", novelID, page, size, sortDir)
}

// GetByChapter returns one page of a chapter's comments, flat.
func (r *commentRepository) GetByChapter(chapterID string, page, size int, sortDir string) ([]models.Comment, int64, error) {
	return r.pageBySubject("chapter_id = ?", chapterID, page, size, sortDir)
}

func (r *commentRepository) pageBySubject(cond, subjectID string, page, size int, sortDir string) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	if err := r.db.Model(&models.Comment{}).Where(cond, subjectID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at ASC"
	if sortDir == "desc" {
		order = "created_at DESC"
	}

	err := r.db.Where(cond, subjectID).
		Preload("User").
		Order(order).
		Limit(size).
		Offset(page * size).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// GetByUser retrieves all comments by a specific user, newest first
func (r *commentRepository) GetByUser(userID string, page, size int) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	if err := r.db.Model(&models.Comment{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("user_id = ?", userID).
		Preload("User").
		Order("created_at DESC").
		Limit(size).
		Offset(page * size).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// GetReplies retrieves direct replies of one comment, oldest first
func (r *commentRepository) GetReplies(parentID string, page, size int) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	if err := r.db.Model(&models.Comment{}).Where("parent_id = ?", parentID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("parent_id = ?", parentID).
		Preload("User").
		Order("created_at ASC").
		Limit(size).
		Offset(page * size).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}
