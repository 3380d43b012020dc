package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceVersion = "1.0.0"

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Todo Tracker API",
		"version": serviceVersion,
		"status":  "operational",
	})
}
