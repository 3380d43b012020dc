package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddComment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	todoID, ok := pathID(c, "id", todoNotFound)
	if !ok {
		return
	}

	var req struct {
		Message *string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment message is required"})
		return
	}

	comment, err := h.Todos.AddComment(c.Request.Context(), userID, todoID, *req.Message)
	if err != nil {
		h.respondStoreError(c, err, todoNotFound)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// DeleteComment requires the comment to belong to the todo named in the path.
func (h *Handler) DeleteComment(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	todoID, ok := pathID(c, "id", todoNotFound)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id", "Comment not found")
	if !ok {
		return
	}

	if err := h.Todos.DeleteComment(c.Request.Context(), userID, todoID, commentID); err != nil {
		h.respondStoreError(c, err, "Comment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
