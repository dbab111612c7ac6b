package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/interiora/interiorabackend/models"
	"github.com/interiora/interiorabackend/services"
)

// GET /user-data/:role/:userId
func GetUserData(svc *services.AggregationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.Param("role")
		userID := c.Param("userId")

		view, err := svc.GetUserData(c.Request.Context(), userID, role)
		if err != nil {
			if errors.Is(err, services.ErrInvalidRole) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching user data"})
			return
		}

		c.JSON(http.StatusOK, view)
	}
}

// GET /admin/stats
func AdminStats(open models.Opener) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only admins can view stats"})
			return
		}

		ctx := c.Request.Context()
		stats := gin.H{}
		for _, name := range Collections {
			n, err := models.NewBaseModel(name, open).Count(ctx, nil)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting " + name})
				return
			}
			stats[name] = n
		}

		c.JSON(http.StatusOK, gin.H{"stats": stats})
	}
}
