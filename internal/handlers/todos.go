package handlers

import (
	"net/http"

	"todotracker/internal/models"

	"github.com/gin-gonic/gin"
)

const todoNotFound = "Todo not found"

// ListTodos returns the caller's todos, newest first.
func (h *Handler) ListTodos(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	todos, err := h.Todos.List(c.Request.Context(), userID)
	if err != nil {
		h.respondStoreError(c, err, todoNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"todos": todos})
}

func (h *Handler) CreateTodo(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	todo, err := h.Todos.Create(c.Request.Context(), userID, req.Title)
	if err != nil {
		h.respondStoreError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusCreated, todo)
}

func (h *Handler) GetTodo(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	todoID, ok := pathID(c, "id", todoNotFound)
	if !ok {
		return
	}

	todo, err := h.Todos.Get(c.Request.Context(), userID, todoID)
	if err != nil {
		h.respondStoreError(c, err, todoNotFound)
		return
	}

	c.JSON(http.StatusOK, todo)
}

// UpdateTodo changes only the fields present in the body.
func (h *Handler) UpdateTodo(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	todoID, ok := pathID(c, "id", todoNotFound)
	if !ok {
		return
	}

	var req struct {
		Title *string `json:"title"`
		Done  *bool   `json:"done"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	todo, err := h.Todos.Update(c.Request.Context(), userID, todoID, models.TodoPatch{
		Title: req.Title,
		Done:  req.Done,
	})
	if err != nil {
		h.respondStoreError(c, err, todoNotFound)
		return
	}

	c.JSON(http.StatusOK, todo)
}

func (h *Handler) ToggleTodo(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	todoID, ok := pathID(c, "id", todoNotFound)
	if !ok {
		return
	}

	todo, err := h.Todos.Toggle(c.Request.Context(), userID, todoID)
	if err != nil {
		h.respondStoreError(c, err, todoNotFound)
		return
	}

	c.JSON(http.StatusOK, todo)
}

func (h *Handler) DeleteTodo(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	todoID, ok := pathID(c, "id", todoNotFound)
	if !ok {
		return
	}

	if err := h.Todos.Delete(c.Request.Context(), userID, todoID); err != nil {
		h.respondStoreError(c, err, todoNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}
