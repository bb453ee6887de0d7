package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Siilah/models"
)

func GetCirclePosts(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	posts, err := sanctuary.ListPosts(currentUser.User_ID, c.Param("circle_id"))
	if err != nil {
		respondWithError(c, "Failed to load posts", err)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	c.JSON(http.StatusOK, posts)
}

func CreatePost(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var submission models.PostSubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post", "details": err.Error()})
		return
	}

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	post, err := sanctuary.SubmitPost(currentUser.User_ID, c.Param("circle_id"), submission)
	if err != nil {
		respondWithError(c, "Failed to create post", err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost edits a post in place. Only its author may do this.
func UpdatePost(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var submission models.PostSubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post", "details": err.Error()})
		return
	}
	submission.Editing_Post_ID = c.Param("post_id")

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	post, err := sanctuary.SubmitPost(currentUser.User_ID, c.Param("circle_id"), submission)
	if err != nil {
		respondWithError(c, "Failed to update post", err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func ReactToPost(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var reaction models.ReactionToggle
	if err := c.ShouldBindJSON(&reaction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reaction", "details": err.Error()})
		return
	}

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	post, err := sanctuary.ReactToPost(currentUser.User_ID, c.Param("circle_id"), c.Param("post_id"), reaction.Emoji)
	if err != nil {
		respondWithError(c, "Failed to react to post", err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// TogglePrayer starts or stops the current user praying for a post. The body
// is optional and only carries a short written prayer.
func TogglePrayer(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var toggle models.PrayerToggle
	if err := c.ShouldBindJSON(&toggle); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer", "details": err.Error()})
		return
	}

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	post, err := sanctuary.TogglePrayer(currentUser.User_ID, c.Param("circle_id"), c.Param("post_id"), toggle.Prayer_Text)
	if err != nil {
		respondWithError(c, "Failed to update prayer", err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func MarkPrayerAnswered(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	post, err := sanctuary.MarkAnswered(currentUser.User_ID, c.Param("circle_id"), c.Param("post_id"))
	if err != nil {
		respondWithError(c, "Failed to mark prayer as answered", err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func CreateResponse(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var reply models.ReplySubmission
	if err := c.ShouldBindJSON(&reply); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid response", "details": err.Error()})
		return
	}

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	post, err := sanctuary.SubmitReply(currentUser.User_ID, c.Param("circle_id"), c.Param("post_id"), reply)
	if err != nil {
		respondWithError(c, "Failed to add response", err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func MarkResponsesRead(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}

	post, err := sanctuary.MarkResponsesRead(currentUser.User_ID, c.Param("circle_id"), c.Param("post_id"))
	if err != nil {
		respondWithError(c, "Failed to mark responses as read", err)
		return
	}

	c.JSON(http.StatusOK, post)
}
