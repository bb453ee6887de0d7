package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Siilah/services"
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// RunWeeklySummaries triggers the weekly summary job outside its schedule.
func RunWeeklySummaries(c *gin.Context) {
	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	generated := sanctuary.RunWeeklySummaries(aiContext(c))
	c.JSON(http.StatusOK, gin.H{
		"message":   "Weekly summaries complete",
		"generated": generated,
	})
}

// GetCircleActivity reports journal counts per action for a circle.
func GetCircleActivity(c *gin.Context) {
	journal := services.GetActivityJournal()
	if journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Activity journal not available. Check DB_URL"})
		return
	}

	circleID := c.Param("circle_id")
	counts, err := journal.CountByAction(c.Request.Context(), circleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load circle activity", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"circleId": circleID,
		"activity": counts,
	})
}
