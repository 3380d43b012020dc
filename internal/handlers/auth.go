package handlers

import (
	"errors"
	"net/http"
	"strings"

	"todotracker/internal/middleware"
	"todotracker/internal/models"
	"todotracker/internal/monitoring"
	"todotracker/internal/store"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}

	user, err := h.Users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateHandle):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		case errors.Is(err, store.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password is too short"})
		case errors.Is(err, store.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password format"})
		default:
			h.respondStoreError(c, err, "User not found")
		}
		return
	}

	token, ok := h.issueToken(c, user)
	if !ok {
		return
	}

	h.Metrics.RecordAuthEvent(monitoring.AuthRegister)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

// Login handles user login
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			h.Metrics.RecordAuthEvent(monitoring.AuthLoginFailed)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		h.respondStoreError(c, err, "User not found")
		return
	}

	token, ok := h.issueToken(c, user)
	if !ok {
		return
	}

	h.Metrics.RecordAuthEvent(monitoring.AuthLoginOK)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Verify returns the user behind the presented token.
func (h *Handler) Verify(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.Users.UserByID(c.Request.Context(), userID)
	if err != nil {
		h.respondStoreError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) issueToken(c *gin.Context, user *models.User) (string, bool) {
	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		h.Log.Error("token issue failed",
			"request_id", middleware.RequestIDFromContext(c),
			"user_id", user.ID,
			"err", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return "", false
	}
	return token, true
}
