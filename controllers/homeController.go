package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Siilah/models"
)

// GetHome returns the daily encouragement and growth summary. Either half may
// be missing when the model is unavailable; the request still succeeds.
func GetHome(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	home, err := sanctuary.Home(aiContext(c), currentUser.User_ID)
	if err != nil {
		respondWithError(c, "Failed to load home", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"home":            home,
		"circles":         sanctuary.ListCircles(currentUser.User_ID),
		"prayingNowCount": sanctuary.PrayingNowCount(),
		"aiAvailable":     home.EncouragementAvailable && home.ProgressAvailable,
	})
}
