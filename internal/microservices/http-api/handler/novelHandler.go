package handler

import (
	"errors"
	"net/http"
	"strconv"

	"novelhub/internal/microservices/http-api/dto"
	"novelhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type NovelHandler struct {
	novelService service.NovelService
}

func NewNovelHandler(novelService service.NovelService) *NovelHandler {
	return &NovelHandler{novelService: novelService}
}

func (h *NovelHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	novels := router.Group("/novels")
	{
		novels.GET("", h.List)
		novels.GET("/:slug", h.GetBySlug)
		novels.GET("/:slug/chapters", h.ListChapters)
		novels.GET("/:slug/chapters/:number", h.GetChapter)
	}
}

// RegisterAdminRoutes registers catalog management routes; the parent group
// is expected to carry the auth and admin middleware.
func (h *NovelHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	novels := router.Group("/novels")
	{
		novels.POST("", h.Create)
		novels.PUT("/:id", h.Update)
	}
}

// List returns one page of the catalog
// GET /api/novels?page=0&size=20&search=
func (h *NovelHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 0 {
		page = 0
	}
	if size < 1 || size > 100 {
		size = 20
	}

	novels, err := h.novelService.ListNovels(page, size, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, novels)
}

// GetBySlug returns a novel's detail page data
// GET /api/novels/:slug
func (h *NovelHandler) GetBySlug(c *gin.Context) {
	novel, err := h.novelService.GetNovelBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNovelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, novel)
}

// ListChapters returns a novel's chapter index
// GET /api/novels/:slug/chapters?page=0&size=50
func (h *NovelHandler) ListChapters(c *gin.Context) {
	novel, err := h.novelService.GetNovelBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNovelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "50"))
	if page < 0 {
		page = 0
	}
	if size < 1 || size > 200 {
		size = 50
	}

	chapters, total, err := h.novelService.ListChapters(novel.ID, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content":       chapters,
		"totalElements": total,
		"page":          page,
		"size":          size,
	})
}

// GetChapter returns one chapter with its body
// GET /api/novels/:slug/chapters/:number
func (h *NovelHandler) GetChapter(c *gin.Context) {
	novel, err := h.novelService.GetNovelBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNovelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chapter number"})
		return
	}

	chapter, err := h.novelService.GetChapter(novel.ID, number)
	if err != nil {
		if errors.Is(err, service.ErrChapterNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, chapter)
}

// Create adds a novel to the catalog
// POST /api/admin/novels
func (h *NovelHandler) Create(c *gin.Context) {
	var req dto.CreateNovelDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	novel, err := h.novelService.CreateNovel(&req)
	if err != nil {
		if errors.Is(err, service.ErrSlugInUse) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, novel)
}

// Update edits catalog metadata
// PUT /api/admin/novels/:id
func (h *NovelHandler) Update(c *gin.Context) {
	var req dto.UpdateNovelDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	novel, err := h.novelService.UpdateNovel(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrNovelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, novel)
}
