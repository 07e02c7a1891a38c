package handler

import (
	"errors"
	"net/http"

	"novelhub/internal/microservices/http-api/dto"
	"novelhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RatingHandler struct {
	ratingService service.RatingService
}

func NewRatingHandler(ratingService service.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

// RegisterRoutes registers rating routes; the parent group is expected to
// carry the auth middleware.
func (h *RatingHandler) RegisterRoutes(router *gin.RouterGroup) {
	ratings := router.Group("/novels/:id/rating")
	{
		ratings.PUT("", h.Rate)
		ratings.GET("", h.GetMine)
	}
}

// Rate upserts the calling user's score for a novel
// PUT /api/novels/:id/rating
func (h *RatingHandler) Rate(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.RateNovelDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rating, err := h.ratingService.RateNovel(userID.(string), c.Param("id"), req.Score)
	if err != nil {
		if errors.Is(err, service.ErrNovelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rating)
}

// GetMine returns the calling user's score for a novel
// GET /api/novels/:id/rating
func (h *RatingHandler) GetMine(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	rating, err := h.ratingService.GetUserRating(userID.(string), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not rated yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rating)
}
