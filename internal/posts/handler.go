package posts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	repository Repository
	log        *zap.Logger
}

func NewHandler(repo Repository, log *zap.Logger) *Handler {
	return &Handler{
		repository: repo,
		log:        log,
	}
}

// Index returns all posts. No ordering or pagination contract.
func (h *Handler) Index(c *gin.Context) {
	posts, err := h.repository.ListPosts()
	if err != nil {
		h.log.Error("failed to list posts", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to list posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *Handler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}

	post, err := h.repository.GetPost(uint(id))
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		h.log.Error("failed to fetch post", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to fetch post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}
