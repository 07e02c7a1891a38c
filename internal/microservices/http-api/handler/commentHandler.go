package handler

import (
	"errors"
	"net/http"
	"strconv"

	"novelhub/internal/microservices/http-api/dto"
	"novelhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// RegisterPublicRoutes registers the read-only comment routes.
func (h *CommentHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	comments := router.Group("/comments")
	{
		comments.GET("/novel/:id", h.ListByNovel)
		comments.GET("/chapter/:id", h.ListByChapter)
		comments.GET("/:id", h.GetByID)
		comments.GET("/:id/replies", h.ListReplies)
	}
}

// RegisterProtectedRoutes registers the write routes; the parent group is
// expected to carry the auth middleware.
func (h *CommentHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	comments := router.Group("/comments")
	{
		comments.POST("", h.Create)
		comments.PUT("/:id", h.Update)
		comments.DELETE("/:id", h.Delete)
		comments.GET("/user/me", h.ListByCurrentUser)
	}
}

// Create creates a new comment or reply
// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.AddComment(userID.(string), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound),
			errors.Is(err, service.ErrNovelNotFound),
			errors.Is(err, service.ErrChapterNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrSubjectRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Update edits an existing comment
// PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	commentID := c.Param("id")

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	role := c.GetString("role")

	var req dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.UpdateComment(commentID, userID.(string), role, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotCommentOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Delete removes a comment and its reply subtree
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID := c.Param("id")

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	role := c.GetString("role")

	if err := h.commentService.DeleteComment(commentID, userID.(string), role); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotCommentOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}

// GetByID retrieves a comment by ID
// GET /api/comments/:id
func (h *CommentHandler) GetByID(c *gin.Context) {
	comment, err := h.commentService.GetCommentByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, comment)
}

// ListByNovel returns one page of a novel's comments
// GET /api/comments/novel/:id?page=0&size=100&sort=asc
func (h *CommentHandler) ListByNovel(c *gin.Context) {
	page, size, sortDir := pagingParams(c)

	comments, err := h.commentService.GetNovelComments(c.Param("id"), page, size, sortDir)
	if err != nil {
		if errors.Is(err, service.ErrNovelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// ListByChapter returns one page of a chapter's comments
// GET /api/comments/chapter/:id?page=0&size=100&sort=asc
func (h *CommentHandler) ListByChapter(c *gin.Context) {
	page, size, sortDir := pagingParams(c)

	comments, err := h.commentService.GetChapterComments(c.Param("id"), page, size, sortDir)
	if err != nil {
		if errors.Is(err, service.ErrChapterNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// ListReplies returns one page of direct replies to a comment
// GET /api/comments/:id/replies?page=0&size=100
func (h *CommentHandler) ListReplies(c *gin.Context) {
	page, size, _ := pagingParams(c)

	comments, err := h.commentService.GetReplies(c.Param("id"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// ListByCurrentUser returns the calling user's comments
// GET /api/comments/user/me?page=0&size=100
func (h *CommentHandler) ListByCurrentUser(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	page, size, _ := pagingParams(c)

	comments, err := h.commentService.GetUserComments(userID.(string), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// pagingParams reads zero-based page, size and sort direction with the
// defaults the web client uses (page 0, 100 per page, oldest first).
func pagingParams(c *gin.Context) (page, size int, sortDir string) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "100"))
	if page < 0 {
		page = 0
	}
	if size < 1 || size > 100 {
		size = 100
	}

	sortDir = c.DefaultQuery("sort", "asc")
	if sortDir != "asc" && sortDir != "desc" {
		sortDir = "asc"
	}
	return page, size, sortDir
}
