package handler

import (
	"errors"
	"net/http"
	"strconv"

	"novelhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	favoriteService service.FavoriteService
}

func NewFavoriteHandler(favoriteService service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

// RegisterRoutes registers favorite routes; the parent group is expected to
// carry the auth middleware.
func (h *FavoriteHandler) RegisterRoutes(router *gin.RouterGroup) {
	favorites := router.Group("/favorites")
	{
		favorites.GET("", h.List)
		favorites.PUT("/:novel_id", h.Add)
		favorites.DELETE("/:novel_id", h.Remove)
		favorites.GET("/:novel_id", h.Check)
	}
}

// List returns the calling user's favorite novels
// GET /api/favorites?page=0&size=20
func (h *FavoriteHandler) List(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 0 {
		page = 0
	}
	if size < 1 || size > 100 {
		size = 20
	}

	favorites, err := h.favoriteService.ListFavorites(userID.(string), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, favorites)
}

// Add marks a novel as a favorite; repeat calls are no-ops
// PUT /api/favorites/:novel_id
func (h *FavoriteHandler) Add(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.favoriteService.AddFavorite(userID.(string), c.Param("novel_id")); err != nil {
		if errors.Is(err, service.ErrNovelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "added to favorites"})
}

// Remove unmarks a favorite
// DELETE /api/favorites/:novel_id
func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.favoriteService.RemoveFavorite(userID.(string), c.Param("novel_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "removed from favorites"})
}

// Check reports whether a novel is in the calling user's favorites
// GET /api/favorites/:novel_id
func (h *FavoriteHandler) Check(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	isFavorite, err := h.favoriteService.IsFavorite(userID.(string), c.Param("novel_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorite": isFavorite})
}
