package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
)

// GetMatches asks the model to group the current user with seeded members.
// A model failure yields an empty list rather than an error.
func GetMatches(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	matches, err := sanctuary.MatchRecommendations(aiContext(c), currentUser.User_ID)
	if err != nil {
		if isDomainError(err) {
			respondWithError(c, "Failed to load matches", err)
			return
		}
		initializers.Log.Warnw("match recommendations unavailable", "userId", currentUser.User_ID, "error", err)
		c.JSON(http.StatusOK, gin.H{"matches": []models.MatchRecommendation{}, "aiAvailable": false})
		return
	}
	if matches == nil {
		matches = []models.MatchRecommendation{}
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches, "aiAvailable": true})
}

// SearchCommunity runs a natural language search across the discovery corpus.
// The plain substring filter is always returned so the directory still works
// when the model is down.
func SearchCommunity(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	directory := sanctuary.FilterCorpus(query)

	result, err := sanctuary.SearchCommunity(aiContext(c), query)
	if err != nil {
		initializers.Log.Warnw("community search unavailable", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"result":      models.CommunitySearchResult{PeopleMatch: []string{}, ThemeMatch: []string{}},
			"directory":   directory,
			"aiAvailable": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":      result,
		"directory":   directory,
		"aiAvailable": true,
	})
}
