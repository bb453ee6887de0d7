package models

import "time"

// Notification type constants
const (
	NotificationTypePrayingForYou  = "PRAYING_FOR_YOU"
	NotificationTypeNewResponse    = "NEW_RESPONSE"
	NotificationTypePrayerAnswered = "PRAYER_ANSWERED"
	NotificationTypeCircleSummary  = "CIRCLE_SUMMARY"
	NotificationTypeAnnouncement   = "ANNOUNCEMENT"
)

type Notification struct {
	Notification_ID  string     `json:"notificationId"`
	User_ID          string     `json:"userId"`
	Type             string     `json:"type"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	Target_Circle_ID *string    `json:"targetCircleId,omitempty"`
	Target_Post_ID   *string    `json:"targetPostId,omitempty"`
	Created_At       time.Time  `json:"createdAt"`
	Read_At          *time.Time `json:"readAt"`
}

// AdminNotification is the body of an admin broadcast.
type AdminNotification struct {
	User_IDs []string `json:"userIds" binding:"required,min=1"`
	Title    string   `json:"title" binding:"required"`
	Body     string   `json:"body" binding:"required"`
}
