package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
)

func GetUserCircles(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, sanctuary.ListCircles(currentUser.User_ID))
}

func GetCircle(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	circle, err := sanctuary.GetCircle(currentUser.User_ID, c.Param("circle_id"))
	if err != nil {
		respondWithError(c, "Failed to load circle", err)
		return
	}

	c.JSON(http.StatusOK, circle)
}

// CreateCircleFromMatch accepts a match recommendation and forms the triad.
func CreateCircleFromMatch(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var match models.MatchRecommendation
	if err := c.ShouldBindJSON(&match); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid match", "details": err.Error()})
		return
	}

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	circle, err := sanctuary.CreateCircleFromMatch(currentUser.User_ID, match)
	if err != nil {
		respondWithError(c, "Failed to create circle", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Circle created successfully",
		"circle":  circle,
	})
}

// CreateCompanionCircle opens the user's private circle with the AI companion.
// Calling it again returns the existing circle.
func CreateCompanionCircle(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	circle, created, err := sanctuary.CreateCompanionCircle(currentUser.User_ID)
	if err != nil {
		respondWithError(c, "Failed to open companion circle", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"circle":  circle,
		"created": created,
	})
}

func MarkCircleRead(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	circle, err := sanctuary.MarkCircleRead(currentUser.User_ID, c.Param("circle_id"))
	if err != nil {
		respondWithError(c, "Failed to mark circle as read", err)
		return
	}

	c.JSON(http.StatusOK, circle)
}

// GetCirclePrompt returns the cached engagement prompt, generating one when the
// circle has none yet or when refresh=true. Only an explicit refresh reports a
// model failure; otherwise the cached prompt (if any) is returned as-is.
func GetCirclePrompt(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)
	circleID := c.Param("circle_id")
	refresh := c.Query("refresh") == "true"

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	cached, hasCached, err := sanctuary.CurrentPrompt(currentUser.User_ID, circleID)
	if err != nil {
		respondWithError(c, "Failed to load prompt", err)
		return
	}
	if hasCached && !refresh {
		c.JSON(http.StatusOK, gin.H{"prompt": cached, "aiAvailable": true})
		return
	}

	prompt, err := sanctuary.RefreshEngagementPrompt(aiContext(c), currentUser.User_ID, circleID)
	if err != nil {
		if refresh || isDomainError(err) {
			respondWithGatewayError(c, "Failed to generate prompt", err)
			return
		}
		initializers.Log.Warnw("engagement prompt unavailable", "circleId", circleID, "error", err)
		c.JSON(http.StatusOK, gin.H{"prompt": nil, "aiAvailable": false})
		return
	}
	if prompt.Text == "" {
		c.JSON(http.StatusOK, gin.H{"prompt": nil, "aiAvailable": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prompt": prompt, "aiAvailable": true})
}

// GenerateCircleSummary posts a summary of the past week into the circle feed.
func GenerateCircleSummary(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	post, err := sanctuary.GenerateCircleSummary(aiContext(c), currentUser.User_ID, c.Param("circle_id"))
	if err != nil {
		respondWithGatewayError(c, "Failed to generate circle summary", err)
		return
	}

	c.JSON(http.StatusCreated, post)
}
