package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
	"github.com/Siilah/services"
)

func getNotificationCenter(c *gin.Context) (*services.NotificationCenter, bool) {
	center := services.GetNotificationCenter()
	if center == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Notification service not available"})
		return nil, false
	}
	return center, true
}

func StorePushToken(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var request models.PushTokenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid push token", "details": err.Error()})
		return
	}

	center, ok := getNotificationCenter(c)
	if !ok {
		return
	}

	token := center.StorePushToken(currentUser.User_ID, request)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Push token stored successfully",
		"pushToken": token,
	})
}

func GetUserNotifications(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	center, ok := getNotificationCenter(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, center.List(currentUser.User_ID))
}

// ToggleUserNotificationStatus flips a notification between read and unread.
func ToggleUserNotificationStatus(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)
	notificationID := c.Param("notification_id")

	center, ok := getNotificationCenter(c)
	if !ok {
		return
	}

	notification, err := center.ToggleRead(currentUser.User_ID, notificationID)
	if errors.Is(err, services.ErrNotificationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, notification)
}

func MarkAllNotificationsAsRead(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	center, ok := getNotificationCenter(c)
	if !ok {
		return
	}

	updated := center.MarkAllRead(currentUser.User_ID)
	c.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read",
		"updated": updated,
	})
}

// SendPushNotification delivers an admin announcement to the listed users.
// Unknown user ids are skipped and reported back.
func SendPushNotification(c *gin.Context) {
	var request models.AdminNotification
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sanctuary, ok := getSanctuary(c)
	if !ok {
		return
	}
	center, ok := getNotificationCenter(c)
	if !ok {
		return
	}

	var recipients []models.UserProfile
	unknown := []string{}
	for _, userID := range request.User_IDs {
		user, err := sanctuary.GetUser(userID)
		if err != nil {
			unknown = append(unknown, userID)
			continue
		}
		recipients = append(recipients, user)
	}

	sent := center.SendAnnouncement(recipients, request.Title, request.Body)
	initializers.Log.Infow("admin announcement sent", "recipients", sent, "unknown", len(unknown))

	c.JSON(http.StatusOK, gin.H{
		"message":        "Push notifications sent successfully",
		"sent":           sent,
		"unknownUserIds": unknown,
	})
}
